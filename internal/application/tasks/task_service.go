package tasks

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/tasks"
)

// TaskService exposes the background task queue to the frontend
type TaskService struct {
	taskRepo tasks.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo tasks.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// List returns the viewer's unacknowledged tasks newest first. With a task
// id it looks that task up regardless of acknowledgement.
func (s *TaskService) List(ctx context.Context, viewer shared.Viewer, req ListTasksRequest) ([]*TaskResponse, error) {
	filter := tasks.TaskFilter{OnlyUnacked: true}
	if req.TaskID != nil {
		filter = tasks.TaskFilter{TaskID: req.TaskID}
	}

	found, err := s.taskRepo.Find(ctx, viewer, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]*TaskResponse, len(found))
	for i, task := range found {
		responses[i] = ToTaskResponse(task)
	}
	return responses, nil
}

// Acknowledge dismisses the given tasks and reports how many were affected.
// Tasks the viewer may not see are silently skipped.
func (s *TaskService) Acknowledge(ctx context.Context, viewer shared.Viewer, req AcknowledgeTasksRequest) (int, error) {
	if len(req.Tasks) == 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Task list is required")
	}

	affected := 0
	for _, id := range req.Tasks {
		task, err := s.taskRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return affected, err
		}
		if !viewer.Superuser && task.OwnerID != nil && *task.OwnerID != viewer.UserID {
			continue
		}
		if task.Acknowledged {
			continue
		}
		task.Acknowledge()
		if err := s.taskRepo.Save(ctx, task); err != nil {
			return affected, err
		}
		affected++
	}
	return affected, nil
}
