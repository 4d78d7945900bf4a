package orchestrator

import (
	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/metadata"
)

// Outcome classifies what a pass did with a task.
type Outcome int

const (
	// OutcomeRecorded means the artifact was captured and written in this pass.
	OutcomeRecorded Outcome = iota
	// OutcomeExisting means the artifact was already on disk; nothing was sent.
	OutcomeExisting
	// OutcomeFailed means capture or encoding failed; a later pass retries it.
	OutcomeFailed
	// OutcomeSkipped means the artifact is missing but the pass was a dry run.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeExisting:
		return "existing"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// TaskResult is the outcome of one task. Err is set only for OutcomeFailed.
type TaskResult struct {
	Task    grid.Task
	Outcome Outcome
	Err     error
}

// PassResult is everything one pass produced. It is built from scratch on
// every pass and never merged with an earlier one.
type PassResult struct {
	ID       int
	Recorded []string
	Existing []string
	Failed   []string
	Skipped  []string
	Tasks    []TaskResult
	Rows     []metadata.Row // One per task, in grid order.
}

// Clean reports whether no task failed.
func (r PassResult) Clean() bool {
	return len(r.Failed) == 0
}

func (r *PassResult) add(t grid.Task, o Outcome, err error) {
	r.Tasks = append(r.Tasks, TaskResult{Task: t, Outcome: o, Err: err})
	switch o {
	case OutcomeRecorded:
		r.Recorded = append(r.Recorded, t.Filename)
	case OutcomeExisting:
		r.Existing = append(r.Existing, t.Filename)
	case OutcomeFailed:
		r.Failed = append(r.Failed, t.Filename)
	case OutcomeSkipped:
		r.Skipped = append(r.Skipped, t.Filename)
	}
}
