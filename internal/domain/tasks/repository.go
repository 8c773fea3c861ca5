package tasks

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskFilter narrows a task listing
type TaskFilter struct {
	TaskID      *uuid.UUID
	OnlyUnacked bool
	OwnerID     *uuid.UUID
}

// TaskRepository defines persistence for background tasks
type TaskRepository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindByTaskID(ctx context.Context, taskID uuid.UUID) (*Task, error)
	// Find returns tasks matching the filter, most recently created first
	Find(ctx context.Context, viewer shared.Viewer, filter TaskFilter) ([]*Task, error)
	// NextPending claims the oldest pending task for a worker, or returns
	// shared.ErrNotFound when the queue is empty.
	NextPending(ctx context.Context) (*Task, error)
}
