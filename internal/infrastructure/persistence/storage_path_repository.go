package persistence

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStoragePathRepository implements StoragePathRepository using GORM
type GormStoragePathRepository struct {
	db *gorm.DB
}

// NewGormStoragePathRepository creates a new GormStoragePathRepository
func NewGormStoragePathRepository(db *gorm.DB) *GormStoragePathRepository {
	return &GormStoragePathRepository{db: db}
}

// FindByID finds a storage path by its ID
func (r *GormStoragePathRepository) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.StoragePath, error) {
	var sp taxonomy.StoragePath
	if err := r.db.WithContext(ctx).First(&sp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// FindByName finds a storage path by exact name
func (r *GormStoragePathRepository) FindByName(ctx context.Context, name string) (*taxonomy.StoragePath, error) {
	var sp taxonomy.StoragePath
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&sp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// FindAll finds all storage paths matching the filter
func (r *GormStoragePathRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*taxonomy.StoragePath, error) {
	var items []*taxonomy.StoragePath
	query, err := applyTaxonomyFilter(r.db.WithContext(ctx).Model(&taxonomy.StoragePath{}), filter, StoragePathSortFields)
	if err != nil {
		return nil, err
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAccessible lists visible storage paths with document counts
func (r *GormStoragePathRepository) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.StoragePath, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	base := applyVisibility(r.db.WithContext(ctx).Model(&taxonomy.StoragePath{}), viewer)
	base = applyTaxonomySearch(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, 0, err
	}

	var items []*taxonomy.StoragePath
	query, err := applyTaxonomyOrder(base.Session(&gorm.Session{}), filter, StoragePathSortFields)
	if err != nil {
		return nil, nil, 0, err
	}
	query = applyTaxonomyPagination(query, filter)
	if err := query.Find(&items).Error; err != nil {
		return nil, nil, 0, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, sp := range items {
		ids[i] = sp.ID
	}
	counts, err := countDocumentsBy(ctx, r.db, viewer, "storage_path_id", ids)
	if err != nil {
		return nil, nil, 0, err
	}
	return items, counts, total, nil
}

// Save creates or updates a storage path
func (r *GormStoragePathRepository) Save(ctx context.Context, sp *taxonomy.StoragePath) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

// Delete deletes a storage path; documents keep existing but lose the link
func (r *GormStoragePathRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("documents").
			Where("storage_path_id = ?", id).
			Update("storage_path_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&taxonomy.StoragePath{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts storage paths matching the filter
func (r *GormStoragePathRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyTaxonomySearch(r.db.WithContext(ctx).Model(&taxonomy.StoragePath{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormStoragePathRepository implements StoragePathRepository
var _ taxonomy.StoragePathRepository = (*GormStoragePathRepository)(nil)
