// Package model defines the domain types shared across the riptide pipeline:
// execution lineage records, watermarks, medallion zones, and stage outcomes.
package model

import "time"

// ExecutionStatus represents the state of one audited process execution.
type ExecutionStatus string

const (
	StatusStarted ExecutionStatus = "STARTED"
	StatusSuccess ExecutionStatus = "SUCCESS"
	StatusFailed  ExecutionStatus = "FAILED"
)

// String returns the string representation of the ExecutionStatus.
func (s ExecutionStatus) String() string {
	return string(s)
}

// IsTerminal checks if the status represents a finished state.
// A record transitions from STARTED to exactly one terminal state.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed:
		return true
	default:
		return false
	}
}

// ExecutionRecord is one audited attempt of a named pipeline process.
// It is created in STARTED state and closed exactly once with a terminal
// status; EndTime is nil until that transition.
type ExecutionRecord struct {
	ExecutionID   string
	BatchID       string
	ProcessName   string
	Layer         string
	Status        ExecutionStatus
	StartTime     time.Time
	EndTime       *time.Time
	RowsProcessed int
	ErrorMessage  *string
}

// Watermark is the last-successful-checkpoint marker for one process name.
// At most one row exists per process; each successful stage completion
// overwrites it.
type Watermark struct {
	ProcessName            string
	LastProcessedTimestamp time.Time
	LastBatchID            string
}

// WatermarkSentinel is returned when no watermark row exists for a process,
// including when the watermark table itself is missing. It stands for
// "beginning of time" on an initial load.
var WatermarkSentinel = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Zone identifies one of the three medallion storage zones.
type Zone string

const (
	ZoneRaw     Zone = "Raw"
	ZoneCurated Zone = "Curated"
	ZoneGold    Zone = "Gold"
)

// String returns the zone name.
func (z Zone) String() string {
	return string(z)
}

// WriteMode selects how a zone table write is applied.
// The pipeline only uses WriteReplace; Append and MergeByKey exist so that
// incremental extraction can be added later without restructuring the store
// interface.
type WriteMode string

const (
	WriteReplace    WriteMode = "REPLACE"
	WriteAppend     WriteMode = "APPEND"
	WriteMergeByKey WriteMode = "MERGE_BY_KEY"
)

// StageResult is the explicit outcome of one pipeline stage run.
// The orchestrator inspects it rather than relying solely on a propagated
// error, and aborts the sequence on the first non-success.
type StageResult struct {
	ProcessName   string
	Status        ExecutionStatus
	RowsProcessed int
	Err           error
}

// Success reports whether the stage completed with SUCCESS status.
func (r StageResult) Success() bool {
	return r.Status == StatusSuccess
}
