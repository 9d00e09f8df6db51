package repository

import (
	"database/sql"
	"fmt"

	"github.com/marmgroup/atlas-best-practices/internal/models"
)

// TaskRepository handles database operations for pipeline tasks.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, uuid, analyzer, mode, tag, status, progress_percent,
	total_tags, processed_tags, failed_tags, error_message, result_summary,
	created_at, started_at, completed_at`

// Create inserts a new pipeline task and fills in its ID.
func (r *TaskRepository) Create(task *models.PipelineTask) error {
	query := `
		INSERT INTO pipeline_tasks (
			uuid, analyzer, mode, tag, status, progress_percent,
			total_tags, processed_tags, failed_tags, error_message, result_summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		task.UUID,
		task.Analyzer,
		task.Mode,
		task.Tag,
		task.Status,
		task.ProgressPercent,
		task.TotalTags,
		task.ProcessedTags,
		task.FailedTags,
		task.ErrorMessage,
		task.ResultSummary,
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

// GetByUUID retrieves a pipeline task by its public UUID.
func (r *TaskRepository) GetByUUID(uuid string) (*models.PipelineTask, error) {
	query := "SELECT " + taskColumns + " FROM pipeline_tasks WHERE uuid = ?"

	task := &models.PipelineTask{}
	err := r.db.QueryRow(query, uuid).Scan(
		&task.ID,
		&task.UUID,
		&task.Analyzer,
		&task.Mode,
		&task.Tag,
		&task.Status,
		&task.ProgressPercent,
		&task.TotalTags,
		&task.ProcessedTags,
		&task.FailedTags,
		&task.ErrorMessage,
		&task.ResultSummary,
		&task.CreatedAt,
		&task.StartedAt,
		&task.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline task: %w", err)
	}

	return task, nil
}

// List retrieves pipeline tasks, newest first, with optional filters.
func (r *TaskRepository) List(analyzer string, status string, limit int, offset int) ([]*models.PipelineTask, error) {
	query := "SELECT " + taskColumns + " FROM pipeline_tasks WHERE 1=1"

	args := []interface{}{}
	if analyzer != "" {
		query += " AND analyzer = ?"
		args = append(args, analyzer)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.PipelineTask
	for rows.Next() {
		task := &models.PipelineTask{}
		err := rows.Scan(
			&task.ID,
			&task.UUID,
			&task.Analyzer,
			&task.Mode,
			&task.Tag,
			&task.Status,
			&task.ProgressPercent,
			&task.TotalTags,
			&task.ProcessedTags,
			&task.FailedTags,
			&task.ErrorMessage,
			&task.ResultSummary,
			&task.CreatedAt,
			&task.StartedAt,
			&task.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// UpdateProgress updates the running counters of a pipeline task.
func (r *TaskRepository) UpdateProgress(id int64, processedTags, failedTags int, progressPercent float64) error {
	query := `
		UPDATE pipeline_tasks
		SET processed_tags = ?, failed_tags = ?, progress_percent = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, processedTags, failedTags, progressPercent, id)
	if err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}

	return nil
}

// MarkAsRunning marks a task as running and records its total tag count.
func (r *TaskRepository) MarkAsRunning(id int64, totalTags int) error {
	query := `
		UPDATE pipeline_tasks
		SET status = ?, total_tags = ?, started_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, models.TaskStatusRunning, totalTags, id)
	if err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	return nil
}

// MarkAsCompleted marks a task as completed with a result summary.
func (r *TaskRepository) MarkAsCompleted(id int64, resultSummary string) error {
	query := `
		UPDATE pipeline_tasks
		SET status = ?, result_summary = ?, progress_percent = 100,
			completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, models.TaskStatusCompleted, resultSummary, id)
	if err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	return nil
}

// MarkAsFailed marks a task as failed with an error message.
func (r *TaskRepository) MarkAsFailed(id int64, errorMessage string) error {
	query := `
		UPDATE pipeline_tasks
		SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.db.Exec(query, models.TaskStatusFailed, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark task as failed: %w", err)
	}

	return nil
}
