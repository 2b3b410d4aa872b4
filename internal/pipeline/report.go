package pipeline

import (
	"errors"
	"time"

	"fmgvault/internal/world"
)

// Outcome is how a single task settled.
type Outcome string

const (
	OutcomeWritten   Outcome = "written"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// TaskResult is the settled result of one note or copy.
type TaskResult struct {
	Kind     world.Kind
	ID       int
	Path     string
	Outcome  Outcome
	Hash     string
	Err      error
	Duration time.Duration
}

// Failed reports whether the task failed.
func (r TaskResult) Failed() bool { return r.Outcome == OutcomeFailed }

// Status is the aggregate outcome of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
)

// Report aggregates one run. Entity and summary notes share Documents; source
// copies are kept apart in Copies.
type Report struct {
	RunID      string
	Started    time.Time
	Finished   time.Time
	Format     world.Format
	MapName    string
	Output     string
	Documents  []TaskResult
	Copies     []TaskResult
	Skipped    []Skip
	Collisions []string
	Stale      []string
	Warnings   []string
}

// Counts tallies documents by outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := map[Outcome]int{}
	for _, d := range r.Documents {
		counts[d.Outcome]++
	}
	return counts
}

// Failures returns every failed document and copy.
func (r *Report) Failures() []TaskResult {
	var out []TaskResult
	for _, set := range [][]TaskResult{r.Documents, r.Copies} {
		for _, t := range set {
			if t.Failed() {
				out = append(out, t)
			}
		}
	}
	return out
}

// Status is success when nothing failed, failure when no document was
// produced, and partial otherwise.
func (r *Report) Status() Status {
	failed := len(r.Failures())
	if failed == 0 {
		return StatusSuccess
	}
	counts := r.Counts()
	if counts[OutcomeWritten]+counts[OutcomeUnchanged] == 0 {
		return StatusFailure
	}
	return StatusPartial
}

// ReferenceFailures counts failed documents caused by an unresolved
// foundational reference.
func (r *Report) ReferenceFailures() int {
	n := 0
	for _, d := range r.Documents {
		var refErr *world.ReferenceError
		if d.Failed() && errors.As(d.Err, &refErr) {
			n++
		}
	}
	return n
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
