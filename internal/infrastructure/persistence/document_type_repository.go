package persistence

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentTypeRepository implements DocumentTypeRepository using GORM
type GormDocumentTypeRepository struct {
	db *gorm.DB
}

// NewGormDocumentTypeRepository creates a new GormDocumentTypeRepository
func NewGormDocumentTypeRepository(db *gorm.DB) *GormDocumentTypeRepository {
	return &GormDocumentTypeRepository{db: db}
}

// FindByID finds a document type by its ID
func (r *GormDocumentTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.DocumentType, error) {
	var dt taxonomy.DocumentType
	if err := r.db.WithContext(ctx).First(&dt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dt, nil
}

// FindByName finds a document type by exact name
func (r *GormDocumentTypeRepository) FindByName(ctx context.Context, name string) (*taxonomy.DocumentType, error) {
	var dt taxonomy.DocumentType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&dt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dt, nil
}

// FindAll finds all document types matching the filter
func (r *GormDocumentTypeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*taxonomy.DocumentType, error) {
	var items []*taxonomy.DocumentType
	query, err := applyTaxonomyFilter(r.db.WithContext(ctx).Model(&taxonomy.DocumentType{}), filter, DocumentTypeSortFields)
	if err != nil {
		return nil, err
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAccessible lists visible document types with document counts
func (r *GormDocumentTypeRepository) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.DocumentType, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	base := applyVisibility(r.db.WithContext(ctx).Model(&taxonomy.DocumentType{}), viewer)
	base = applyTaxonomySearch(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, 0, err
	}

	var items []*taxonomy.DocumentType
	query, err := applyTaxonomyOrder(base.Session(&gorm.Session{}), filter, DocumentTypeSortFields)
	if err != nil {
		return nil, nil, 0, err
	}
	query = applyTaxonomyPagination(query, filter)
	if err := query.Find(&items).Error; err != nil {
		return nil, nil, 0, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, dt := range items {
		ids[i] = dt.ID
	}
	counts, err := countDocumentsBy(ctx, r.db, viewer, "document_type_id", ids)
	if err != nil {
		return nil, nil, 0, err
	}
	return items, counts, total, nil
}

// Save creates or updates a document type
func (r *GormDocumentTypeRepository) Save(ctx context.Context, dt *taxonomy.DocumentType) error {
	return r.db.WithContext(ctx).Save(dt).Error
}

// Delete deletes a document type; documents keep existing but lose the link
func (r *GormDocumentTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("documents").
			Where("document_type_id = ?", id).
			Update("document_type_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&taxonomy.DocumentType{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts document types matching the filter
func (r *GormDocumentTypeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyTaxonomySearch(r.db.WithContext(ctx).Model(&taxonomy.DocumentType{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// countDocumentsBy counts visible documents grouped by a foreign key column
func countDocumentsBy(ctx context.Context, db *gorm.DB, viewer shared.Viewer, column string, ids []uuid.UUID) (map[uuid.UUID]taxonomy.UsageCounts, error) {
	counts := make(map[uuid.UUID]taxonomy.UsageCounts, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	type row struct {
		RefID uuid.UUID
		Count int64
	}
	var rows []row
	query := db.WithContext(ctx).
		Table("documents").
		Select(column + " AS ref_id, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column)
	query = applyVisibility(query, viewer)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, rw := range rows {
		counts[rw.RefID] = taxonomy.UsageCounts{DocumentCount: rw.Count}
	}
	return counts, nil
}

// Ensure GormDocumentTypeRepository implements DocumentTypeRepository
var _ taxonomy.DocumentTypeRepository = (*GormDocumentTypeRepository)(nil)
