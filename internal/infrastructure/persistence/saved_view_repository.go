package persistence

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/views"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSavedViewRepository implements SavedViewRepository using GORM
type GormSavedViewRepository struct {
	db *gorm.DB
}

// NewGormSavedViewRepository creates a new GormSavedViewRepository
func NewGormSavedViewRepository(db *gorm.DB) *GormSavedViewRepository {
	return &GormSavedViewRepository{db: db}
}

// Save creates or updates a saved view, replacing its filter rules
func (r *GormSavedViewRepository) Save(ctx context.Context, view *views.SavedView) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&views.FilterRule{}, "saved_view_id = ?", view.ID).Error; err != nil {
			return err
		}
		return tx.Save(view).Error
	})
}

// FindByID finds a saved view with its filter rules
func (r *GormSavedViewRepository) FindByID(ctx context.Context, id uuid.UUID) (*views.SavedView, error) {
	var view views.SavedView
	if err := r.db.WithContext(ctx).
		Preload("FilterRules").
		First(&view, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &view, nil
}

// FindByOwner lists a user's saved views ordered by name
func (r *GormSavedViewRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*views.SavedView, error) {
	var items []*views.SavedView
	if err := r.db.WithContext(ctx).
		Preload("FilterRules").
		Where("owner_id = ?", ownerID).
		Order("LOWER(name) ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Delete deletes a saved view and its rules
func (r *GormSavedViewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&views.FilterRule{}, "saved_view_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&views.SavedView{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormSavedViewRepository implements SavedViewRepository
var _ views.SavedViewRepository = (*GormSavedViewRepository)(nil)
