package handler

import (
	apptasks "github.com/dms/backend/internal/application/tasks"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskHandler exposes the background consume task queue
type TaskHandler struct {
	BaseHandler
	tasks *apptasks.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *apptasks.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List godoc
// @Summary      List consume tasks
// @Description  Returns unacknowledged tasks newest first; task_id looks up a single task regardless of acknowledgement
// @Tags         tasks
// @Produce      json
// @Param        task_id query string false "Look up a specific task"
// @Success      200 {object} APIResponse[[]apptasks.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apptasks.ListTasksRequest
	if value := c.Query("task_id"); value != "" {
		taskID, err := uuid.Parse(value)
		if err != nil {
			h.BadRequest(c, "Invalid task_id")
			return
		}
		req.TaskID = &taskID
	}

	tasks, err := h.tasks.List(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tasks)
}

// Acknowledge godoc
// @Summary      Acknowledge consume tasks
// @Description  Dismisses the given tasks from the task list and returns the affected count
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        request body apptasks.AcknowledgeTasksRequest true "Task ids to acknowledge"
// @Success      200 {object} APIResponse[CountData]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /acknowledge_tasks [post]
func (h *TaskHandler) Acknowledge(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apptasks.AcknowledgeTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	count, err := h.tasks.Acknowledge(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: int64(count)})
}

// RegisterRoutes registers the task routes
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tasks", h.List)
	rg.POST("/acknowledge_tasks", h.Acknowledge)
}
