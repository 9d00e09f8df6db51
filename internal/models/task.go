package models

import "time"

// PipelineTask represents one batch run of the residence pipeline.
type PipelineTask struct {
	ID   int64  `json:"id" db:"id"`
	UUID string `json:"uuid" db:"uuid"`

	// What to run
	Analyzer string `json:"analyzer" db:"analyzer"` // registered analyzer name
	Mode     string `json:"mode" db:"mode"`         // full or per-tag
	Tag      string `json:"tag,omitempty" db:"tag"` // empty = all tags

	// Status
	Status          string  `json:"status" db:"status"`
	ProgressPercent float64 `json:"progress_percent" db:"progress_percent"`

	// Execution info
	TotalTags     int    `json:"total_tags" db:"total_tags"`
	ProcessedTags int    `json:"processed_tags" db:"processed_tags"`
	FailedTags    int    `json:"failed_tags" db:"failed_tags"`
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"` // JSON

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Task mode constants
const (
	TaskModeFull   = "full"
	TaskModePerTag = "per-tag"
)

// Task status constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)
