package tasks

import (
	"time"

	"github.com/dms/backend/internal/domain/tasks"
	"github.com/google/uuid"
)

// TaskResponse is the API shape of a background task
type TaskResponse struct {
	ID                uuid.UUID  `json:"id"`
	TaskID            uuid.UUID  `json:"task_id"`
	TaskType          string     `json:"type"`
	TaskFileName      string     `json:"task_file_name"`
	Status            string     `json:"status"`
	Result            string     `json:"result"`
	Acknowledged      bool       `json:"acknowledged"`
	DateCreated       time.Time  `json:"date_created"`
	DateDone          *time.Time `json:"date_done"`
	RelatedDocumentID *uuid.UUID `json:"related_document"`
	Owner             *uuid.UUID `json:"owner"`
}

// ToTaskResponse converts a task
func ToTaskResponse(task *tasks.Task) *TaskResponse {
	return &TaskResponse{
		ID:                task.ID,
		TaskID:            task.TaskID,
		TaskType:          task.TaskType,
		TaskFileName:      task.TaskFileName,
		Status:            string(task.Status),
		Result:            task.Result,
		Acknowledged:      task.Acknowledged,
		DateCreated:       task.CreatedAt,
		DateDone:          task.DateDone,
		RelatedDocumentID: task.RelatedDocumentID,
		Owner:             task.OwnerID,
	}
}

// ListTasksRequest narrows the task listing
type ListTasksRequest struct {
	// TaskID looks a single task up regardless of acknowledgement
	TaskID *uuid.UUID
}

// AcknowledgeTasksRequest dismisses tasks from the frontend
type AcknowledgeTasksRequest struct {
	Tasks []uuid.UUID `json:"tasks" binding:"required"`
}
