package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FilesystemStorage {
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, storage.EnsureReady(context.Background()))
	return storage
}

func TestFilesystemStorage_PutAndOpen(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	err := storage.Put(ctx, "originals/doc.pdf", strings.NewReader("pdf bytes"), "application/pdf")
	require.NoError(t, err)

	reader, size, err := storage.Open(ctx, "originals/doc.pdf")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))
	assert.Equal(t, int64(len("pdf bytes")), size)
}

func TestFilesystemStorage_PutOverwrites(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Put(ctx, "thumbnails/doc.webp", strings.NewReader("v1"), ""))
	require.NoError(t, storage.Put(ctx, "thumbnails/doc.webp", strings.NewReader("v2"), ""))

	reader, _, err := storage.Open(ctx, "thumbnails/doc.webp")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}

func TestFilesystemStorage_OpenMissing(t *testing.T) {
	storage := newTestStorage(t)

	_, _, err := storage.Open(context.Background(), "originals/missing.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestFilesystemStorage_Exists(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	exists, err := storage.Exists(ctx, "archive/doc.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, storage.Put(ctx, "archive/doc.pdf", strings.NewReader("x"), ""))

	exists, err = storage.Exists(ctx, "archive/doc.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFilesystemStorage_Delete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Put(ctx, "originals/doc.txt", strings.NewReader("x"), ""))
	require.NoError(t, storage.Delete(ctx, "originals/doc.txt"))

	exists, err := storage.Exists(ctx, "originals/doc.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting again is not an error
	assert.NoError(t, storage.Delete(ctx, "originals/doc.txt"))
}

func TestFilesystemStorage_RejectsTraversal(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	err := storage.Put(ctx, "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)

	_, _, err = storage.Open(ctx, "/etc/passwd")
	assert.Error(t, err)
}
