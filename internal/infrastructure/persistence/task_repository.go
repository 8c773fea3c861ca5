package persistence

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/tasks"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *tasks.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// FindByID finds a task by its row ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*tasks.Task, error) {
	var task tasks.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindByTaskID finds a task by its public task id
func (r *GormTaskRepository) FindByTaskID(ctx context.Context, taskID uuid.UUID) (*tasks.Task, error) {
	var task tasks.Task
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Find returns tasks matching the filter, most recently created first.
// Non-superusers only see their own tasks and unowned ones.
func (r *GormTaskRepository) Find(ctx context.Context, viewer shared.Viewer, filter tasks.TaskFilter) ([]*tasks.Task, error) {
	query := r.db.WithContext(ctx).Model(&tasks.Task{})

	if !viewer.Superuser {
		query = query.Where("owner_id IS NULL OR owner_id = ?", viewer.UserID)
	}
	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}
	if filter.OnlyUnacked {
		query = query.Where("acknowledged = ?", false)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	var items []*tasks.Task
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// NextPending claims the oldest pending task for a worker. The row lock keeps
// two workers from picking up the same task.
func (r *GormTaskRepository) NextPending(ctx context.Context) (*tasks.Task, error) {
	var task tasks.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", tasks.StatusPending).
			Order("created_at ASC").
			First(&task).Error; err != nil {
			return err
		}
		if err := task.Start(); err != nil {
			return err
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Ensure GormTaskRepository implements TaskRepository
var _ tasks.TaskRepository = (*GormTaskRepository)(nil)
