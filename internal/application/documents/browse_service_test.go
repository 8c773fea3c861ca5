package documents

import (
	"context"
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) addStoragePath(t *testing.T, name, path string) *taxonomy.StoragePath {
	t.Helper()
	sp, err := taxonomy.NewStoragePath(name, path)
	require.NoError(t, err)
	f.paths.paths[sp.ID] = sp
	return sp
}

func TestBrowseService_TopLevel(t *testing.T) {
	f := newFixture(t)
	viewer := shared.Viewer{UserID: uuid.New()}

	finance := f.addStoragePath(t, "Finance", "finance")
	f.addStoragePath(t, "Taxes", "finance/taxes")
	loose := f.addDocument(t, "Loose sheet", viewer.UserID)

	resp, err := f.browse.Browse(context.Background(), viewer, BrowseRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp.Parent)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, BrowseEntryFolder, resp.Results[0].Type)
	assert.Equal(t, finance.ID, resp.Results[0].ID)
	assert.Equal(t, "finance", resp.Results[0].Path)

	assert.Equal(t, BrowseEntryFile, resp.Results[1].Type)
	assert.Equal(t, loose.ID, resp.Results[1].ID)
	assert.Equal(t, "Loose sheet", resp.Results[1].Name)
}

func TestBrowseService_Children(t *testing.T) {
	f := newFixture(t)
	viewer := shared.Viewer{UserID: uuid.New()}

	finance := f.addStoragePath(t, "Finance", "finance")
	taxes := f.addStoragePath(t, "Taxes", "finance/taxes")
	f.addStoragePath(t, "Receipts 2024", "finance/taxes/2024")

	filed := f.addDocument(t, "Bank statement", viewer.UserID)
	filed.AssignStoragePath(&finance.ID)
	f.addDocument(t, "Unfiled", viewer.UserID)

	resp, err := f.browse.Browse(context.Background(), viewer, BrowseRequest{
		ParentStoragePathID: &finance.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Parent)
	assert.Equal(t, finance.ID, resp.Parent.ID)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, BrowseEntryFolder, resp.Results[0].Type)
	assert.Equal(t, taxes.ID, resp.Results[0].ID)
	assert.Equal(t, BrowseEntryFile, resp.Results[1].Type)
	assert.Equal(t, filed.ID, resp.Results[1].ID)
}

func TestBrowseService_Paging(t *testing.T) {
	f := newFixture(t)
	viewer := shared.Viewer{UserID: uuid.New()}

	f.addStoragePath(t, "A", "a")
	f.addStoragePath(t, "B", "b")
	f.addStoragePath(t, "C", "c")

	resp, err := f.browse.Browse(context.Background(), viewer, BrowseRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Results, 1)

	t.Run("page beyond the end is empty", func(t *testing.T) {
		resp, err := f.browse.Browse(context.Background(), viewer, BrowseRequest{Page: 5, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
	})
}

func TestBrowseService_UnknownParent(t *testing.T) {
	f := newFixture(t)
	viewer := shared.Viewer{UserID: uuid.New()}

	missing := uuid.New()
	_, err := f.browse.Browse(context.Background(), viewer, BrowseRequest{
		ParentStoragePathID: &missing,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
