package workflow

import (
	"time"

	"ytscribe/internal/queue"
)

// Failure records one video that could not be processed.
type Failure struct {
	VideoID string
	Title   string
	Reason  string
}

// RunSummary aggregates the results of a run.
type RunSummary struct {
	RunID      string
	Target     string
	Completed  int
	Skipped    int
	Failures   []Failure
	MergedPath string
	Elapsed    time.Duration
}

func (s *RunSummary) record(outcome Outcome) {
	switch {
	case outcome.Skipped:
		s.Skipped++
	case outcome.Status == queue.StatusCompleted:
		s.Completed++
	default:
		reason := "unknown failure"
		if outcome.Err != nil {
			reason = outcome.Err.Error()
		}
		s.Failures = append(s.Failures, Failure{
			VideoID: outcome.VideoID,
			Title:   outcome.Title,
			Reason:  reason,
		})
	}
}

// Failed reports whether any video failed during the run.
func (s RunSummary) Failed() bool {
	return len(s.Failures) > 0
}

// Processed returns the total number of videos the run looked at.
func (s RunSummary) Processed() int {
	return s.Completed + s.Skipped + len(s.Failures)
}
