// Package collector aggregates step and journey outcomes across all workers.
package collector

import "time"

// Outcome classifies a transaction as passed or failed.
type Outcome int

const (
	// Pass indicates the transaction completed with HTTP status < 400.
	Pass Outcome = iota
	// Fail indicates an error status or a transport failure.
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// StepResult records one executed step. Immutable once created.
type StepResult struct {
	StepName   string
	StatusCode int // 0 when no response was received
	Duration   time.Duration
	Outcome    Outcome
}

// JourneyResult records one completed iteration. A worker builds it locally
// over the iteration and submits it whole, so the collector never sees a
// partially executed journey.
type JourneyResult struct {
	CorrelationID string
	WorkerID      int
	Iteration     int
	Duration      time.Duration
	Steps         []StepResult
	Outcome       Outcome
}

// Finalize sets the aggregate outcome: the journey fails if any step failed.
func (r *JourneyResult) Finalize() {
	r.Outcome = Pass
	for _, s := range r.Steps {
		if s.Outcome == Fail {
			r.Outcome = Fail
			return
		}
	}
}
