package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/marmgroup/atlas-best-practices/internal/models"
	"github.com/marmgroup/atlas-best-practices/internal/service"
	"github.com/marmgroup/atlas-best-practices/pkg/response"
)

// TaskHandler handles HTTP requests for pipeline tasks.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(service *service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTaskRequest is the body of POST /api/v1/tasks.
type CreateTaskRequest struct {
	Analyzer string `json:"analyzer" binding:"required"`
	Mode     string `json:"mode"`
	Tag      string `json:"tag"`
}

// CreateTask handles POST /api/v1/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Mode == "" {
		req.Mode = models.TaskModeFull
		if req.Tag != "" {
			req.Mode = models.TaskModePerTag
		}
	}

	task, err := h.service.CreateTask(req.Analyzer, req.Mode, req.Tag)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to create task", err)
		return
	}

	response.Success(c, task)
}

// GetTask handles GET /api/v1/tasks/:uuid
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Param("uuid"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to get task", err)
		return
	}

	if task == nil {
		response.Error(c, http.StatusNotFound, "Task not found", nil)
		return
	}

	response.Success(c, task)
}

// ListTasks handles GET /api/v1/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tasks, err := h.service.ListTasks(c.Query("analyzer"), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	response.Success(c, gin.H{
		"data":  tasks,
		"count": len(tasks),
	})
}
