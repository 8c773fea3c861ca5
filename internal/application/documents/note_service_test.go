package documents

import (
	"context"
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Annotated", owner.UserID)

	notes, err := f.noteSvc.Create(context.Background(), owner, doc.ID, CreateNoteRequest{Note: "first"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "first", notes[0].Note)
	assert.Equal(t, &owner.UserID, notes[0].User)

	notes, err = f.noteSvc.Create(context.Background(), owner, doc.ID, CreateNoteRequest{Note: "second"})
	require.NoError(t, err)
	require.Len(t, notes, 2)

	listed, err := f.noteSvc.List(context.Background(), owner, doc.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	t.Run("empty note is rejected", func(t *testing.T) {
		_, err := f.noteSvc.Create(context.Background(), owner, doc.ID, CreateNoteRequest{Note: "   "})
		require.Error(t, err)
	})

	t.Run("shared users cannot add notes", func(t *testing.T) {
		reader := shared.Viewer{UserID: uuid.New()}
		doc.ShareWith(reader.UserID)
		_, err := f.noteSvc.Create(context.Background(), reader, doc.ID, CreateNoteRequest{Note: "hi"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestNoteService_Delete(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Annotated", owner.UserID)

	notes, err := f.noteSvc.Create(context.Background(), owner, doc.ID, CreateNoteRequest{Note: "obsolete"})
	require.NoError(t, err)
	require.Len(t, notes, 1)

	remaining, err := f.noteSvc.Delete(context.Background(), owner, doc.ID, notes[0].ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	t.Run("note of another document is not found", func(t *testing.T) {
		other := f.addDocument(t, "Other", owner.UserID)
		notes, err := f.noteSvc.Create(context.Background(), owner, other.ID, CreateNoteRequest{Note: "kept"})
		require.NoError(t, err)

		_, err = f.noteSvc.Delete(context.Background(), owner, doc.ID, notes[0].ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestNoteService_SearchableAfterCreate(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Quiet", owner.UserID)

	_, err := f.noteSvc.Create(context.Background(), owner, doc.ID, CreateNoteRequest{Note: "zebra sighting"})
	require.NoError(t, err)

	results, total, err := f.searches.Search(context.Background(), owner, SearchRequest{Query: "notes:zebra"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, doc.ID, results[0].ID)
}

func TestCustomMetadataService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Tagged", owner.UserID)

	entry, err := f.metaSvc.Create(context.Background(), owner, doc.ID, CreateCustomMetadataRequest{
		Key:   "invoice_number",
		Value: "INV-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "invoice_number", entry.Key)
	assert.Equal(t, "INV-001", entry.Value)

	t.Run("same key overwrites the value", func(t *testing.T) {
		entry, err := f.metaSvc.Create(context.Background(), owner, doc.ID, CreateCustomMetadataRequest{
			Key:   "invoice_number",
			Value: "INV-002",
		})
		require.NoError(t, err)
		assert.Equal(t, "INV-002", entry.Value)

		entries, err := f.metaSvc.List(context.Background(), owner, doc.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "INV-002", entries[0].Value)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		_, err := f.metaSvc.Create(context.Background(), owner, doc.ID, CreateCustomMetadataRequest{Key: "  "})
		require.Error(t, err)
	})
}
