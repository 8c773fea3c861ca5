package handler

import (
	"context"
	"net/http"
	"testing"

	appviews "github.com/dms/backend/internal/application/views"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/views"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUISettingsRepo struct {
	settings map[uuid.UUID]*views.UISettings
}

func newMemoryUISettingsRepo() *memoryUISettingsRepo {
	return &memoryUISettingsRepo{settings: map[uuid.UUID]*views.UISettings{}}
}

func (m *memoryUISettingsRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*views.UISettings, error) {
	stored, ok := m.settings[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return stored, nil
}

func (m *memoryUISettingsRepo) Save(ctx context.Context, settings *views.UISettings) error {
	m.settings[settings.UserID] = settings
	return nil
}

func uiSettingsTestRouter(t *testing.T) (*memoryUserRepo, *gin.Engine, uuid.UUID) {
	t.Helper()
	users := newMemoryUserRepo()
	user := addTestUser(t, users, "alice", "correct horse")
	service := appviews.NewUISettingsService(newMemoryUISettingsRepo(), users)
	return users, newTestRouter(user.ID, false, NewUISettingsHandler(service)), user.ID
}

func TestUISettingsHandler_GetDefaults(t *testing.T) {
	_, router, _ := uiSettingsTestRouter(t)

	rec := performJSON(router, http.MethodGet, "/api/v1/ui_settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp appviews.UISettingsResponse
	require.NoError(t, decodeData(rec, &resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.Empty(t, resp.Settings)
	assert.Contains(t, resp.Permissions, "view_document")
}

func TestUISettingsHandler_ReplaceRoundTrip(t *testing.T) {
	_, router, _ := uiSettingsTestRouter(t)

	rec := performJSON(router, http.MethodPost, "/api/v1/ui_settings", map[string]any{
		"settings": map[string]any{"dark_mode": true},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result ResultData
	require.NoError(t, decodeData(rec, &result))
	assert.Equal(t, "OK", result.Result)

	rec = performJSON(router, http.MethodGet, "/api/v1/ui_settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp appviews.UISettingsResponse
	require.NoError(t, decodeData(rec, &resp))
	assert.Equal(t, true, resp.Settings["dark_mode"])
}

func TestUISettingsHandler_ReplaceRequiresSettings(t *testing.T) {
	_, router, _ := uiSettingsTestRouter(t)

	rec := performJSON(router, http.MethodPost, "/api/v1/ui_settings", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
