// Package trace builds the correlation identifiers and request-tagging header
// that thread one journey iteration through the target service and the
// observability tooling behind it.
package trace

import (
	"fmt"
	"time"
)

// IDs are the four identifiers generated fresh for every journey iteration.
// They are a pure function of (workerID, iteration, wall clock, labels);
// worker IDs are unique per run and each (worker, iteration) pair generates
// exactly once, so IDs never collide within a run.
type IDs struct {
	Correlation string
	Customer    string
	Session     string
	Trace       string
}

// NewIDs generates the identifiers for one iteration.
//
// Formats (fixed, part of the downstream compatibility contract):
//
//	correlation: LR_{runLabel}_{workerID}_{iteration}_{unixSeconds}
//	customer:    customer_{workerID}_{iteration}_{unixSeconds mod 10000}
//	session:     session_{journeyLabel}_{workerID}_{iteration}
//	trace:       trace_{correlation}_{unixSeconds}
func NewIDs(runLabel, journeyLabel string, workerID, iteration int, now time.Time) IDs {
	secs := now.Unix()
	correlation := fmt.Sprintf("LR_%s_%d_%d_%d", runLabel, workerID, iteration, secs)
	return IDs{
		Correlation: correlation,
		Customer:    fmt.Sprintf("customer_%d_%d_%d", workerID, iteration, secs%10000),
		Session:     fmt.Sprintf("session_%s_%d_%d", journeyLabel, workerID, iteration),
		Trace:       fmt.Sprintf("trace_%s_%d", correlation, secs),
	}
}
