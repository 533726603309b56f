// Package engine drives virtual users through a journey definition and
// collects per-step and per-journey outcomes.
package engine

import (
	"time"

	"github.com/bizobs/journeyload/internal/journey"
	"github.com/bizobs/journeyload/internal/trace"
)

// VirtualUser is the per-worker state of one concurrent execution lane.
//
// The profile and traffic source are drawn once, when the worker starts, and
// persist for its lifetime. The four identifiers regenerate at the start of
// every iteration and never change mid-iteration. A VirtualUser is owned
// exclusively by its worker goroutine and is never shared.
type VirtualUser struct {
	ID            int
	Profile       journey.Profile
	TrafficSource string

	// IDs for the current iteration; set by BeginIteration.
	IDs       trace.IDs
	Iteration int
}

// NewVirtualUser creates a worker context with a deterministically drawn
// profile. The same (runSeed, workerID) pair always yields the same profile
// and traffic source, which keeps test runs replayable.
func NewVirtualUser(workerID int, runSeed int64) *VirtualUser {
	rng := journey.WorkerRand(runSeed, workerID)
	return &VirtualUser{
		ID:            workerID,
		Profile:       journey.DrawProfile(rng),
		TrafficSource: journey.DrawTrafficSource(rng),
	}
}

// BeginIteration refreshes the iteration identifiers. Called exactly once per
// iteration, before any step executes.
func (vu *VirtualUser) BeginIteration(iteration int, runLabel, journeyLabel string, now time.Time) {
	vu.Iteration = iteration
	vu.IDs = trace.NewIDs(runLabel, journeyLabel, vu.ID, iteration, now)
}
