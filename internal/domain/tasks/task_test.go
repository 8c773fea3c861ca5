package tasks

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConsumeTask_Lifecycle(t *testing.T) {
	task := NewConsumeTask("invoice.pdf", nil)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, TaskTypeConsume, task.TaskType)
	assert.False(t, task.Finished())

	assert.NoError(t, task.Start())
	assert.Equal(t, StatusStarted, task.Status)
	assert.Error(t, task.Start(), "a started task cannot be started again")

	docID := uuid.New()
	task.Succeed("Success. New document id "+docID.String()+" created", &docID)
	assert.Equal(t, StatusSuccess, task.Status)
	assert.True(t, task.Finished())
	assert.NotNil(t, task.DateDone)
	assert.Equal(t, docID, *task.RelatedDocumentID)
}

func TestConsumeTask_FailAndAcknowledge(t *testing.T) {
	task := NewConsumeTask("broken.pdf", nil)
	_ = task.Start()

	task.Fail("Not consuming broken.pdf: it is a duplicate")
	assert.Equal(t, StatusFailure, task.Status)
	assert.True(t, task.Finished())
	assert.False(t, task.Acknowledged)

	task.Acknowledge()
	assert.True(t, task.Acknowledged)
}
