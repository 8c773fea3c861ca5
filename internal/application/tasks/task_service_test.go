package tasks

import (
	"context"
	"sort"
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/tasks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskRepo struct {
	tasks.TaskRepository
	tasks map[uuid.UUID]*tasks.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]*tasks.Task{}}
}

func (f *fakeTaskRepo) Save(ctx context.Context, task *tasks.Task) error {
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*tasks.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) Find(ctx context.Context, viewer shared.Viewer, filter tasks.TaskFilter) ([]*tasks.Task, error) {
	var result []*tasks.Task
	for _, task := range f.tasks {
		if !viewer.Superuser && task.OwnerID != nil && *task.OwnerID != viewer.UserID {
			continue
		}
		if filter.TaskID != nil && task.TaskID != *filter.TaskID {
			continue
		}
		if filter.OnlyUnacked && task.Acknowledged {
			continue
		}
		result = append(result, task)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func TestTaskService_List(t *testing.T) {
	repo := newFakeTaskRepo()
	service := NewTaskService(repo)
	owner := shared.Viewer{UserID: uuid.New()}

	pending := tasks.NewConsumeTask("a.pdf", &owner.UserID)
	require.NoError(t, repo.Save(context.Background(), pending))

	acked := tasks.NewConsumeTask("b.pdf", &owner.UserID)
	acked.Acknowledge()
	require.NoError(t, repo.Save(context.Background(), acked))

	otherUser := uuid.New()
	foreign := tasks.NewConsumeTask("c.pdf", &otherUser)
	require.NoError(t, repo.Save(context.Background(), foreign))

	listed, err := service.List(context.Background(), owner, ListTasksRequest{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, pending.TaskID, listed[0].TaskID)
	assert.Equal(t, "PENDING", listed[0].Status)

	t.Run("task id lookup includes acknowledged tasks", func(t *testing.T) {
		listed, err := service.List(context.Background(), owner, ListTasksRequest{TaskID: &acked.TaskID})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.True(t, listed[0].Acknowledged)
	})

	t.Run("superusers see everything", func(t *testing.T) {
		admin := shared.Viewer{UserID: uuid.New(), Superuser: true}
		listed, err := service.List(context.Background(), admin, ListTasksRequest{})
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})
}

func TestTaskService_Acknowledge(t *testing.T) {
	repo := newFakeTaskRepo()
	service := NewTaskService(repo)
	owner := shared.Viewer{UserID: uuid.New()}

	first := tasks.NewConsumeTask("a.pdf", &owner.UserID)
	second := tasks.NewConsumeTask("b.pdf", &owner.UserID)
	require.NoError(t, repo.Save(context.Background(), first))
	require.NoError(t, repo.Save(context.Background(), second))

	affected, err := service.Acknowledge(context.Background(), owner, AcknowledgeTasksRequest{
		Tasks: []uuid.UUID{first.ID, second.ID, uuid.New()},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, affected)
	assert.True(t, first.Acknowledged)
	assert.True(t, second.Acknowledged)

	t.Run("already acknowledged tasks do not count again", func(t *testing.T) {
		affected, err := service.Acknowledge(context.Background(), owner, AcknowledgeTasksRequest{
			Tasks: []uuid.UUID{first.ID},
		})
		require.NoError(t, err)
		assert.Zero(t, affected)
	})

	t.Run("foreign tasks are skipped", func(t *testing.T) {
		otherUser := uuid.New()
		foreign := tasks.NewConsumeTask("c.pdf", &otherUser)
		require.NoError(t, repo.Save(context.Background(), foreign))

		affected, err := service.Acknowledge(context.Background(), owner, AcknowledgeTasksRequest{
			Tasks: []uuid.UUID{foreign.ID},
		})
		require.NoError(t, err)
		assert.Zero(t, affected)
		assert.False(t, foreign.Acknowledged)
	})

	t.Run("empty list is rejected", func(t *testing.T) {
		_, err := service.Acknowledge(context.Background(), owner, AcknowledgeTasksRequest{})
		require.Error(t, err)
	})
}
