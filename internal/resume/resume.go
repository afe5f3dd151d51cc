// Package resume decides where an incremental run starts reading a log.
package resume

import "github.com/oastats/oastats-go/pkg/oastats/stats"

// Reason explains a Decision.
type Reason string

const (
	// ReasonNone means there was no prior snapshot.
	ReasonNone Reason = "none"
	// ReasonInvalid means the prior snapshot failed validation.
	ReasonInvalid Reason = "invalid"
	// ReasonRotated means the log shrank since the snapshot was written.
	ReasonRotated Reason = "rotated"
	// ReasonResume means the snapshot is used and reading continues after it.
	ReasonResume Reason = "resume"
)

// Decision is the outcome of Decide.
type Decision struct {
	// StartLine is the 1-based number of the first line to process.
	StartLine int
	// Usable reports whether the snapshot is to be merged into.
	Usable bool
	Reason Reason
	// Err holds the validation error for ReasonInvalid.
	Err error
}

// Decide picks the first line to process given the log's current size and
// the snapshot of the previous run (nil if there is none).
func Decide(logSize int64, snap *stats.Snapshot) Decision {
	if snap == nil {
		return Decision{StartLine: 1, Reason: ReasonNone}
	}
	if err := snap.Validate(); err != nil {
		return Decision{StartLine: 1, Reason: ReasonInvalid, Err: err}
	}
	if logSize < snap.LogSize {
		return Decision{StartLine: 1, Reason: ReasonRotated}
	}
	return Decision{
		StartLine: snap.LinesProcessed + 1,
		Usable:    true,
		Reason:    ReasonResume,
	}
}
