package documents

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/tasks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadService_Upload(t *testing.T) {
	f := newFixture(t)
	uploader := shared.Viewer{UserID: uuid.New()}

	taskID, err := f.upload.Upload(context.Background(), uploader, UploadRequest{
		Filename: "statement.pdf",
	}, strings.NewReader("%PDF-1.4 statement"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, taskID)

	require.Len(t, f.taskRepo.saved, 1)
	task := f.taskRepo.saved[0]
	assert.Equal(t, taskID, task.TaskID)
	assert.Equal(t, tasks.TaskTypeConsume, task.TaskType)
	assert.Equal(t, "statement.pdf", task.TaskFileName)
	assert.Equal(t, tasks.StatusPending, task.Status)
	assert.Equal(t, &uploader.UserID, task.OwnerID)

	reader, _, err := f.store.Open(context.Background(), task.IncomingKey())
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 statement", string(data))
}

func TestUploadService_UploadWithOverrides(t *testing.T) {
	f := newFixture(t)
	uploader := shared.Viewer{UserID: uuid.New()}

	correspondentID := uuid.New()
	tagID := uuid.New()
	asn := int64(7)
	_, err := f.upload.Upload(context.Background(), uploader, UploadRequest{
		Filename:            "contract.pdf",
		Title:               "Signed contract",
		CorrespondentID:     &correspondentID,
		TagIDs:              []uuid.UUID{tagID},
		ArchiveSerialNumber: &asn,
	}, strings.NewReader("contract body"))
	require.NoError(t, err)

	require.Len(t, f.taskRepo.saved, 1)
	overrides, err := f.taskRepo.saved[0].GetOverrides()
	require.NoError(t, err)
	assert.Equal(t, "Signed contract", overrides.Title)
	assert.Equal(t, &correspondentID, overrides.CorrespondentID)
	assert.Equal(t, []uuid.UUID{tagID}, overrides.TagIDs)
	assert.Equal(t, &asn, overrides.ASN)
}

func TestUploadService_UploadGuards(t *testing.T) {
	f := newFixture(t)
	uploader := shared.Viewer{UserID: uuid.New()}

	t.Run("missing filename", func(t *testing.T) {
		_, err := f.upload.Upload(context.Background(), uploader, UploadRequest{}, strings.NewReader("x"))
		require.Error(t, err)
		assert.Empty(t, f.taskRepo.saved)
	})

	t.Run("taken archive serial number", func(t *testing.T) {
		doc := f.addDocument(t, "Existing", uploader.UserID)
		asn := int64(99)
		require.NoError(t, doc.SetASN(&asn))

		_, err := f.upload.Upload(context.Background(), uploader, UploadRequest{
			Filename:            "dup.pdf",
			ArchiveSerialNumber: &asn,
		}, strings.NewReader("x"))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}
