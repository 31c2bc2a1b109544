package queue

import (
	"strings"
	"time"

	"ytscribe/internal/transcript"
)

// Status represents the lifecycle of a tracked video.
type Status string

const (
	StatusPending      Status = "pending"
	StatusFetching     Status = "fetching"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusTranscribing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Item is one video's progress record.
type Item struct {
	VideoID      string
	Title        string
	ChannelURL   string
	Status       Status
	Source       transcript.Source
	OutputPath   string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the state machine for a run.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ShouldProcess reports whether a run should dispatch this item. Completed
// items are skipped; pending and failed items are (re)tried; in-flight
// statuses left behind by a crash are retried as well.
func (i Item) ShouldProcess() bool {
	return i.Status != StatusCompleted
}

// HealthSummary describes aggregated progress counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
