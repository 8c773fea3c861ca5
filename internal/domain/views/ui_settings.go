package views

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UISettings holds a user's frontend preferences as an opaque JSON blob.
// The server only round-trips it; interpretation is entirely client-side.
type UISettings struct {
	shared.BaseEntity
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Settings string    `gorm:"type:text;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (UISettings) TableName() string {
	return "ui_settings"
}

// NewUISettings creates an empty settings record for a user
func NewUISettings(userID uuid.UUID) *UISettings {
	return &UISettings{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Settings:   "{}",
	}
}

// UISettingsRepository defines persistence for per-user UI settings
type UISettingsRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*UISettings, error)
	Save(ctx context.Context, settings *UISettings) error
}
