package views

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/views"
)

// permission strings the frontend uses to toggle UI elements. The access
// model is single-tier, so every authenticated user carries the full set.
var uiPermissions = []string{
	"view_document", "add_document", "change_document", "delete_document",
	"view_tag", "add_tag", "change_tag", "delete_tag",
	"view_correspondent", "add_correspondent", "change_correspondent", "delete_correspondent",
	"view_documenttype", "add_documenttype", "change_documenttype", "delete_documenttype",
	"view_storagepath", "add_storagepath", "change_storagepath", "delete_storagepath",
	"view_savedview", "add_savedview", "change_savedview", "delete_savedview",
	"view_note", "add_note", "delete_note",
}

// UISettingsService round-trips the per-user frontend settings blob
type UISettingsService struct {
	settings views.UISettingsRepository
	users    identity.UserRepository
}

// NewUISettingsService creates a new UISettingsService
func NewUISettingsService(settings views.UISettingsRepository, users identity.UserRepository) *UISettingsService {
	return &UISettingsService{settings: settings, users: users}
}

// Get returns the viewer's settings together with their account summary
func (s *UISettingsService) Get(ctx context.Context, viewer shared.Viewer) (*UISettingsResponse, error) {
	user, err := s.users.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}

	blob := "{}"
	stored, err := s.settings.FindByUser(ctx, viewer.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if stored != nil {
		blob = stored.Settings
	}

	settings := map[string]interface{}{}
	if err := json.Unmarshal([]byte(blob), &settings); err != nil {
		settings = map[string]interface{}{}
	}

	return &UISettingsResponse{
		User:        toUserInfo(user),
		Settings:    settings,
		Permissions: uiPermissions,
	}, nil
}

// Replace overwrites the viewer's settings blob
func (s *UISettingsService) Replace(ctx context.Context, viewer shared.Viewer, req ReplaceUISettingsRequest) error {
	blob, err := json.Marshal(req.Settings)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", "Settings must be a JSON object")
	}

	stored, err := s.settings.FindByUser(ctx, viewer.UserID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		stored = views.NewUISettings(viewer.UserID)
	}
	stored.Settings = string(blob)
	return s.settings.Save(ctx, stored)
}

// toUserInfo maps the account flags onto the group names the frontend
// understands
func toUserInfo(user *identity.User) UserInfo {
	groups := []string{}
	if user.IsStaff {
		groups = append(groups, "staff")
	}
	if user.IsSuperuser {
		groups = append(groups, "admin")
	}
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		IsSuperuser: user.IsSuperuser,
		Groups:      groups,
	}
}
