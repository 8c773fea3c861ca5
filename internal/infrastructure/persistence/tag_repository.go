package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTagRepository implements TagRepository using GORM
type GormTagRepository struct {
	db *gorm.DB
}

// NewGormTagRepository creates a new GormTagRepository
func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// FindByID finds a tag by its ID
func (r *GormTagRepository) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.Tag, error) {
	var tag taxonomy.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// FindByName finds a tag by exact name
func (r *GormTagRepository) FindByName(ctx context.Context, name string) (*taxonomy.Tag, error) {
	var tag taxonomy.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// FindAll finds all tags matching the filter
func (r *GormTagRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*taxonomy.Tag, error) {
	var tags []*taxonomy.Tag
	query, err := applyTaxonomyFilter(r.db.WithContext(ctx).Model(&taxonomy.Tag{}), filter, TagSortFields)
	if err != nil {
		return nil, err
	}
	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// FindAccessible lists visible tags with document counts, ordered by
// lowercased name unless the filter says otherwise.
func (r *GormTagRepository) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.Tag, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	base := applyVisibility(r.db.WithContext(ctx).Model(&taxonomy.Tag{}), viewer)
	base = applyTaxonomySearch(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, 0, err
	}

	var tags []*taxonomy.Tag
	query, err := applyTaxonomyOrder(base.Session(&gorm.Session{}), filter, TagSortFields)
	if err != nil {
		return nil, nil, 0, err
	}
	query = applyTaxonomyPagination(query, filter)
	if err := query.Find(&tags).Error; err != nil {
		return nil, nil, 0, err
	}

	counts, err := r.usageCounts(ctx, viewer, tagIDs(tags))
	if err != nil {
		return nil, nil, 0, err
	}
	return tags, counts, total, nil
}

// usageCounts counts visible documents per tag
func (r *GormTagRepository) usageCounts(ctx context.Context, viewer shared.Viewer, ids []uuid.UUID) (map[uuid.UUID]taxonomy.UsageCounts, error) {
	counts := make(map[uuid.UUID]taxonomy.UsageCounts, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	type row struct {
		TagID uuid.UUID
		Count int64
	}
	var rows []row
	query := r.db.WithContext(ctx).
		Table("document_tags").
		Select("document_tags.tag_id AS tag_id, COUNT(*) AS count").
		Joins("JOIN documents ON documents.id = document_tags.document_id").
		Where("document_tags.tag_id IN ?", ids).
		Group("document_tags.tag_id")
	query = applyVisibilityAlias(query, viewer, "documents")
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, rw := range rows {
		counts[rw.TagID] = taxonomy.UsageCounts{DocumentCount: rw.Count}
	}
	return counts, nil
}

// FindInboxTags finds all tags flagged as inbox tags
func (r *GormTagRepository) FindInboxTags(ctx context.Context) ([]*taxonomy.Tag, error) {
	var tags []*taxonomy.Tag
	if err := r.db.WithContext(ctx).Where("is_inbox_tag = ?", true).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// FindByIDs finds tags by a set of ids
func (r *GormTagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*taxonomy.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []*taxonomy.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Save creates or updates a tag
func (r *GormTagRepository) Save(ctx context.Context, tag *taxonomy.Tag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

// Delete deletes a tag and its document associations
func (r *GormTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&documentTag{}, "tag_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&taxonomy.Tag{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts tags matching the filter
func (r *GormTagRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyTaxonomySearch(r.db.WithContext(ctx).Model(&taxonomy.Tag{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func tagIDs(tags []*taxonomy.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

// applyTaxonomyFilter applies search, ordering and pagination
func applyTaxonomyFilter(query *gorm.DB, filter shared.Filter, sortFields map[string]string) (*gorm.DB, error) {
	query = applyTaxonomySearch(query, filter)
	query, err := applyTaxonomyOrder(query, filter, sortFields)
	if err != nil {
		return nil, err
	}
	return applyTaxonomyPagination(query, filter), nil
}

// applyTaxonomySearch applies the name search. LOWER + LIKE keeps the
// predicate portable across postgres and sqlite.
func applyTaxonomySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	if prefix, ok := filter.Filters["name_startswith"].(string); ok && prefix != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(prefix)+"%")
	}
	if id, ok := filter.Filters["id"]; ok {
		query = query.Where("id = ?", id)
	}
	return query
}

// applyTaxonomyOrder orders by lowercased name by default, matching how the
// frontend presents taxonomy lists. Unknown sort fields are rejected.
func applyTaxonomyOrder(query *gorm.DB, filter shared.Filter, sortFields map[string]string) (*gorm.DB, error) {
	expr, err := SortExpr(filter.OrderBy, sortFields, "name")
	if err != nil {
		return nil, err
	}
	dir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		dir = "DESC"
	}
	return query.Order(expr + " " + dir), nil
}

func applyTaxonomyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// Ensure GormTagRepository implements TagRepository
var _ taxonomy.TagRepository = (*GormTagRepository)(nil)
