package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCorrespondentRepository implements CorrespondentRepository using GORM
type GormCorrespondentRepository struct {
	db *gorm.DB
}

// NewGormCorrespondentRepository creates a new GormCorrespondentRepository
func NewGormCorrespondentRepository(db *gorm.DB) *GormCorrespondentRepository {
	return &GormCorrespondentRepository{db: db}
}

// FindByID finds a correspondent by its ID
func (r *GormCorrespondentRepository) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.Correspondent, error) {
	var c taxonomy.Correspondent
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByName finds a correspondent by exact name
func (r *GormCorrespondentRepository) FindByName(ctx context.Context, name string) (*taxonomy.Correspondent, error) {
	var c taxonomy.Correspondent
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll finds all correspondents matching the filter
func (r *GormCorrespondentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*taxonomy.Correspondent, error) {
	var items []*taxonomy.Correspondent
	query, err := applyTaxonomyFilter(r.db.WithContext(ctx).Model(&taxonomy.Correspondent{}), filter, CorrespondentSortFields)
	if err != nil {
		return nil, err
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAccessible lists visible correspondents with document counts and the
// date of the latest correspondence.
func (r *GormCorrespondentRepository) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.Correspondent, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	base := applyVisibility(r.db.WithContext(ctx).Model(&taxonomy.Correspondent{}), viewer)
	base = applyTaxonomySearch(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, 0, err
	}

	var items []*taxonomy.Correspondent
	query, err := applyTaxonomyOrder(base.Session(&gorm.Session{}), filter, CorrespondentSortFields)
	if err != nil {
		return nil, nil, 0, err
	}
	query = applyTaxonomyPagination(query, filter)
	if err := query.Find(&items).Error; err != nil {
		return nil, nil, 0, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}
	counts, err := r.usageCounts(ctx, viewer, ids)
	if err != nil {
		return nil, nil, 0, err
	}
	return items, counts, total, nil
}

func (r *GormCorrespondentRepository) usageCounts(ctx context.Context, viewer shared.Viewer, ids []uuid.UUID) (map[uuid.UUID]taxonomy.UsageCounts, error) {
	counts := make(map[uuid.UUID]taxonomy.UsageCounts, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	type row struct {
		CorrespondentID uuid.UUID
		Count           int64
		LastCreated     *time.Time
	}
	var rows []row
	query := r.db.WithContext(ctx).
		Table("documents").
		Select("correspondent_id, COUNT(*) AS count, MAX(created) AS last_created").
		Where("correspondent_id IN ?", ids).
		Group("correspondent_id")
	query = applyVisibility(query, viewer)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, rw := range rows {
		counts[rw.CorrespondentID] = taxonomy.UsageCounts{
			DocumentCount:      rw.Count,
			LastCorrespondence: rw.LastCreated,
		}
	}
	return counts, nil
}

// Save creates or updates a correspondent
func (r *GormCorrespondentRepository) Save(ctx context.Context, c *taxonomy.Correspondent) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete deletes a correspondent; documents keep existing but lose the link
func (r *GormCorrespondentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("documents").
			Where("correspondent_id = ?", id).
			Update("correspondent_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&taxonomy.Correspondent{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts correspondents matching the filter
func (r *GormCorrespondentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyTaxonomySearch(r.db.WithContext(ctx).Model(&taxonomy.Correspondent{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCorrespondentRepository implements CorrespondentRepository
var _ taxonomy.CorrespondentRepository = (*GormCorrespondentRepository)(nil)
