package analysis

import (
	"context"
	"database/sql"
)

// Analyzer is the interface that all pipeline analyzers must implement.
type Analyzer interface {
	// Analyze performs the analysis for a given task.
	// mode: "full" reprocesses every tag, "per-tag" only the task's tag.
	Analyze(ctx context.Context, taskID int64, mode string) error

	// GetName returns the name of the analyzer.
	GetName() string
}

// BaseAnalyzer provides task bookkeeping shared by all analyzers.
type BaseAnalyzer struct {
	DB   *sql.DB
	Name string
}

// NewBaseAnalyzer creates a new base analyzer.
func NewBaseAnalyzer(db *sql.DB, name string) *BaseAnalyzer {
	return &BaseAnalyzer{
		DB:   db,
		Name: name,
	}
}

// GetName returns the analyzer name.
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// TaskTag returns the tag the task was created for. Empty means all tags.
func (a *BaseAnalyzer) TaskTag(taskID int64) (string, error) {
	var tag string
	err := a.DB.QueryRow("SELECT tag FROM pipeline_tasks WHERE id = ?", taskID).Scan(&tag)
	return tag, err
}

// UpdateTaskProgress updates the per-tag progress of a pipeline task.
func (a *BaseAnalyzer) UpdateTaskProgress(taskID int64, processed, total, failed int) error {
	percent := 0.0
	if total > 0 {
		percent = float64(processed) / float64(total) * 100.0
	}

	query := `
		UPDATE pipeline_tasks
		SET processed_tags = ?,
		    total_tags = ?,
		    failed_tags = ?,
		    progress_percent = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := a.DB.Exec(query, processed, total, failed, percent, taskID)
	return err
}

// MarkTaskAsRunning marks a task as running.
func (a *BaseAnalyzer) MarkTaskAsRunning(taskID int64) error {
	query := `
		UPDATE pipeline_tasks
		SET status = 'running',
		    started_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := a.DB.Exec(query, taskID)
	return err
}

// MarkTaskAsCompleted marks a task as completed with a JSON result summary.
func (a *BaseAnalyzer) MarkTaskAsCompleted(taskID int64, resultSummary string) error {
	query := `
		UPDATE pipeline_tasks
		SET status = 'completed',
		    result_summary = ?,
		    progress_percent = 100,
		    completed_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := a.DB.Exec(query, resultSummary, taskID)
	return err
}

// MarkTaskAsFailed marks a task as failed with an error message.
func (a *BaseAnalyzer) MarkTaskAsFailed(taskID int64, errorMsg string) error {
	query := `
		UPDATE pipeline_tasks
		SET status = 'failed',
		    error_message = ?,
		    completed_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := a.DB.Exec(query, errorMsg, taskID)
	return err
}

// AnalyzerFactory is a function that creates an analyzer instance.
// workers sizes the analyzer's worker pool; values < 1 keep the
// analyzer's default.
type AnalyzerFactory func(db *sql.DB, workers int) Analyzer

// AnalyzerRegistry maps analyzer names to factories.
var AnalyzerRegistry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers an analyzer factory under a name.
func RegisterAnalyzer(name string, factory AnalyzerFactory) {
	AnalyzerRegistry[name] = factory
}

// GetAnalyzer retrieves an analyzer instance by name, or nil if unknown.
func GetAnalyzer(name string, db *sql.DB, workers int) Analyzer {
	factory, ok := AnalyzerRegistry[name]
	if !ok {
		return nil
	}
	return factory(db, workers)
}
