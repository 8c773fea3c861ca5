package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apptaxonomy "github.com/dms/backend/internal/application/taxonomy"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTagRepo struct {
	taxonomy.TagRepository
	tags map[uuid.UUID]*taxonomy.Tag
}

func newMemoryTagRepo() *memoryTagRepo {
	return &memoryTagRepo{tags: map[uuid.UUID]*taxonomy.Tag{}}
}

func (m *memoryTagRepo) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.Tag, error) {
	if tag, ok := m.tags[id]; ok {
		return tag, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memoryTagRepo) FindByName(ctx context.Context, name string) (*taxonomy.Tag, error) {
	for _, tag := range m.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryTagRepo) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.Tag, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	var visible []*taxonomy.Tag
	for _, tag := range m.tags {
		if tag.AccessibleBy(viewer.UserID, viewer.Superuser) {
			visible = append(visible, tag)
		}
	}
	return visible, map[uuid.UUID]taxonomy.UsageCounts{}, int64(len(visible)), nil
}

func (m *memoryTagRepo) Save(ctx context.Context, tag *taxonomy.Tag) error {
	m.tags[tag.ID] = tag
	return nil
}

func (m *memoryTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.tags[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tags, id)
	return nil
}

func tagTestRouter(userID uuid.UUID) (*memoryTagRepo, *gin.Engine) {
	repo := newMemoryTagRepo()
	handler := NewTagHandler(apptaxonomy.NewTagService(repo))
	return repo, newTestRouter(userID, false, handler)
}

func TestTagHandler_CreateAndList(t *testing.T) {
	userID := uuid.New()
	_, router := tagTestRouter(userID)

	rec := performJSON(router, http.MethodPost, "/api/v1/tags", map[string]any{
		"name":  "Receipts",
		"color": "#ff0000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created apptaxonomy.TagResponse
	require.NoError(t, decodeData(rec, &created))
	assert.Equal(t, "Receipts", created.Name)
	assert.Equal(t, "receipts", created.Slug)

	rec = performJSON(router, http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []apptaxonomy.TagResponse
	require.NoError(t, decodeData(rec, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Receipts", listed[0].Name)
}

func TestTagHandler_ListMeta(t *testing.T) {
	_, router := tagTestRouter(uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags?page=2&page_size=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"meta"`)
}

func TestTagHandler_DuplicateName(t *testing.T) {
	_, router := tagTestRouter(uuid.New())

	rec := performJSON(router, http.MethodPost, "/api/v1/tags", map[string]any{"name": "Taxes"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performJSON(router, http.MethodPost, "/api/v1/tags", map[string]any{"name": "Taxes"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTagHandler_UpdateAndDelete(t *testing.T) {
	userID := uuid.New()
	repo, router := tagTestRouter(userID)

	tag, err := taxonomy.NewTag("Invoices")
	require.NoError(t, err)
	tag.SetOwner(userID)
	require.NoError(t, repo.Save(context.Background(), tag))

	rec := performJSON(router, http.MethodPatch, "/api/v1/tags/"+tag.ID.String(), map[string]any{
		"name": "Paid Invoices",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated apptaxonomy.TagResponse
	require.NoError(t, decodeData(rec, &updated))
	assert.Equal(t, "paid-invoices", updated.Slug)

	rec = performJSON(router, http.MethodDelete, "/api/v1/tags/"+tag.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.tags)
}

func TestTagHandler_GetUnknown(t *testing.T) {
	_, router := tagTestRouter(uuid.New())

	rec := performJSON(router, http.MethodGet, "/api/v1/tags/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = performJSON(router, http.MethodGet, "/api/v1/tags/garbage", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTagHandler_InvalidMatchingAlgorithm(t *testing.T) {
	_, router := tagTestRouter(uuid.New())

	rec := performJSON(router, http.MethodPost, "/api/v1/tags", map[string]any{
		"name":               "Bad",
		"matching_algorithm": "psychic",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
