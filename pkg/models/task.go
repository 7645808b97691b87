// Package models defines the data structures used throughout the application
package models

// Outcome represents the terminal result of processing a single task
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// DownloadTask represents a single catalog segment to fetch: a source clip
// identified by YTID, a [StartSeconds, EndSeconds) window, and the machine
// label codes attached to it. The first label is the primary label.
type DownloadTask struct {
	YTID         string
	StartSeconds float64
	EndSeconds   float64
	Labels       []string
}

// PrimaryLabel returns the first label code, or "" for a task with no labels
func (t DownloadTask) PrimaryLabel() string {
	if len(t.Labels) == 0 {
		return ""
	}
	return t.Labels[0]
}

// Result is the per-task outcome reported by the download pipeline
type Result struct {
	Outcome  Outcome
	Attempts int
	Err      error
}
