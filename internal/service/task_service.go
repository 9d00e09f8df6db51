package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/marmgroup/atlas-best-practices/internal/analysis"
	"github.com/marmgroup/atlas-best-practices/internal/models"
	"github.com/marmgroup/atlas-best-practices/internal/repository"
)

// TaskService handles pipeline task business logic.
type TaskService struct {
	repo    *repository.TaskRepository
	db      *sql.DB
	workers int
}

// NewTaskService creates a new task service. workers sizes the worker
// pool handed to analyzers; values < 1 keep analyzer defaults.
func NewTaskService(repo *repository.TaskRepository, db *sql.DB, workers int) *TaskService {
	return &TaskService{
		repo:    repo,
		db:      db,
		workers: workers,
	}
}

// CreateTask creates a pipeline task and starts the analyzer in the
// background. The returned task carries the UUID clients poll with.
func (s *TaskService) CreateTask(analyzerName, mode, tag string) (*models.PipelineTask, error) {
	if analysis.GetAnalyzer(analyzerName, s.db, s.workers) == nil {
		return nil, fmt.Errorf("unknown analyzer: %s", analyzerName)
	}
	if mode != models.TaskModeFull && mode != models.TaskModePerTag {
		return nil, fmt.Errorf("invalid task mode: %s", mode)
	}
	if mode == models.TaskModePerTag && tag == "" {
		return nil, fmt.Errorf("per-tag task requires a tag")
	}

	task := &models.PipelineTask{
		UUID:     uuid.New().String(),
		Analyzer: analyzerName,
		Mode:     mode,
		Tag:      tag,
		Status:   models.TaskStatusPending,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	go s.runAnalyzer(task.ID, analyzerName, mode)

	return task, nil
}

// runAnalyzer executes the analyzer in-process. The task row is the
// only channel back to the caller, so failures end up on it rather
// than being returned.
func (s *TaskService) runAnalyzer(taskID int64, analyzerName, mode string) {
	log.Printf("[TaskService] Starting analyzer %s for task %d (mode: %s)", analyzerName, taskID, mode)

	analyzer := analysis.GetAnalyzer(analyzerName, s.db, s.workers)
	if analyzer == nil {
		s.repo.MarkAsFailed(taskID, fmt.Sprintf("unknown analyzer: %s", analyzerName))
		return
	}

	if err := analyzer.Analyze(context.Background(), taskID, mode); err != nil {
		log.Printf("[TaskService] Analyzer %s failed for task %d: %v", analyzerName, taskID, err)
		return
	}

	log.Printf("[TaskService] Analyzer %s completed for task %d", analyzerName, taskID)
}

// GetTask retrieves a task by its public UUID.
func (s *TaskService) GetTask(taskUUID string) (*models.PipelineTask, error) {
	return s.repo.GetByUUID(taskUUID)
}

// ListTasks retrieves tasks with optional filters, newest first.
func (s *TaskService) ListTasks(analyzerName, status string, limit, offset int) ([]*models.PipelineTask, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(analyzerName, status, limit, offset)
}
