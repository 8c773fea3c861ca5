package persistence

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/views"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUISettingsRepository implements UISettingsRepository using GORM
type GormUISettingsRepository struct {
	db *gorm.DB
}

// NewGormUISettingsRepository creates a new GormUISettingsRepository
func NewGormUISettingsRepository(db *gorm.DB) *GormUISettingsRepository {
	return &GormUISettingsRepository{db: db}
}

// FindByUser finds a user's UI settings
func (r *GormUISettingsRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*views.UISettings, error) {
	var settings views.UISettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Save creates or updates UI settings
func (r *GormUISettingsRepository) Save(ctx context.Context, settings *views.UISettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// Ensure GormUISettingsRepository implements UISettingsRepository
var _ views.UISettingsRepository = (*GormUISettingsRepository)(nil)
