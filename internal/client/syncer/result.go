package syncer

import (
	"fmt"
	"time"
)

// Result is the terminal outcome of a run.
type Result int

const (
	// Success: nothing was dirty, or the batch was accepted and reconciled.
	Success Result = iota + 1
	// Retry: the run may succeed later.
	Retry
	// Failure: the server rejected the batch permanently.
	Failure
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Retry:
		return "retry"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// State is a step of a run.
type State int

const (
	Idle State = iota
	Gating
	Batching
	Pushing
	Reconciling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Gating:
		return "gating"
	case Batching:
		return "batching"
	case Pushing:
		return "pushing"
	case Reconciling:
		return "reconciling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Report describes a finished run.
type Report struct {
	Result Result
	// Stage is the last state entered.
	Stage State

	Accounts int
	Projects int

	// ServerTime is the acknowledgment time of an accepted batch.
	ServerTime time.Time
	StartedAt  time.Time
	Duration   time.Duration
}
