package convergence

import (
	"strconv"
	"time"
)

// Phase is a poller state.
type Phase string

const (
	// Init takes the first sample.
	Init Phase = "INIT"
	// Polling re-samples on a fixed interval.
	Polling Phase = "POLLING"
	// Converged means two consecutive equal non-zero samples.
	Converged Phase = "CONVERGED"
	// Exhausted means the budget ran out with a non-zero, still moving count. Soft success.
	Exhausted Phase = "EXHAUSTED"
	// Failed means a sampling error, cancellation, or a count that stayed at zero.
	Failed Phase = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p == Converged || p == Exhausted || p == Failed
}

// Succeeded reports whether callers may treat the phase as success.
func (p Phase) Succeeded() bool {
	return p == Converged || p == Exhausted
}

// State is the progress of one poll.
type State struct {
	Phase    Phase
	Previous int // -1 until the first re-sample
	Current  int
	Attempts int
	Elapsed  time.Duration
}

// converged reports whether the last two samples agree on a non-zero count.
func (s State) converged() bool {
	return s.Previous == s.Current && s.Current > 0
}

// Outcome is the terminal result of a poll.
type Outcome struct {
	Key        string        `json:"key"`
	Phase      Phase         `json:"state"`
	Count      int           `json:"count"`
	Previous   int           `json:"previous"`
	Attempts   int           `json:"attempts"`
	Samples    []int         `json:"samples"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Error      string        `json:"error,omitempty"`
	FinishedAt time.Time     `json:"finished_at"`
}

// String renders a compact summary, e.g. "CONVERGED count=50 attempts=1".
func (o Outcome) String() string {
	return string(o.Phase) + " count=" + strconv.Itoa(o.Count) + " attempts=" + strconv.Itoa(o.Attempts)
}
