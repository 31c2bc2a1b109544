package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external tool the pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries resolves each requirement's command on PATH and reports
// availability, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		statuses = append(statuses, check(req))
	}
	return statuses
}

func check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	switch {
	case status.Command == "":
		status.Detail = "command not configured"
	case !onPath(status.Command):
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
	default:
		status.Available = true
	}
	return status
}

func onPath(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
