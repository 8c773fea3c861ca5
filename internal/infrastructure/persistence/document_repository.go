package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID and hydrates its tag ids
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	var doc documents.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadTags(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindAll finds all documents matching the filter
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*documents.Document, error) {
	var docs []*documents.Document
	query := r.db.WithContext(ctx).Model(&documents.Document{})
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderExpr, err := SortExpr(filter.OrderBy, DocumentSortFields, "created")
	if err != nil {
		return nil, err
	}
	query = query.Order(orderExpr + " " + ValidateSortOrder(filter.OrderDir))
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindAccessible lists documents visible to the viewer with note counts
func (r *GormDocumentRepository) FindAccessible(ctx context.Context, viewer shared.Viewer, filter documents.DocumentFilter) (*shared.Paginated[*documents.Document], map[uuid.UUID]int64, error) {
	base := applyVisibility(r.db.WithContext(ctx).Model(&documents.Document{}), viewer)
	base = r.applyDocumentFilter(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	orderExpr, err := SortExpr(filter.OrderBy, DocumentSortFields, "created")
	if err != nil {
		return nil, nil, err
	}
	query := base.Session(&gorm.Session{}).Order(orderExpr + " " + ValidateSortOrder(filter.OrderDir))

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var docs []*documents.Document
	if err := query.Find(&docs).Error; err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	tagsByDoc, err := r.TagIDsFor(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range docs {
		d.TagIDs = tagsByDoc[d.ID]
	}

	noteCounts, err := r.noteCounts(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	result := shared.NewPaginated(docs, total, page, pageSize)
	return &result, noteCounts, nil
}

// applyDocumentFilter translates the document filter into SQL predicates
func (r *GormDocumentRepository) applyDocumentFilter(query *gorm.DB, filter documents.DocumentFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}
	if filter.TitleContains != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.TitleContains)+"%")
	}
	if filter.CorrespondentID != nil {
		query = query.Where("correspondent_id = ?", *filter.CorrespondentID)
	}
	if filter.DocumentTypeID != nil {
		query = query.Where("document_type_id = ?", *filter.DocumentTypeID)
	}
	if filter.StoragePathID != nil {
		query = query.Where("storage_path_id = ?", *filter.StoragePathID)
	}
	if filter.WithoutStoragePath {
		query = query.Where("storage_path_id IS NULL")
	}
	if len(filter.TagIDs) > 0 {
		query = query.Where(
			"id IN (SELECT document_id FROM document_tags WHERE tag_id IN ?)",
			filter.TagIDs,
		)
	}
	for _, tagID := range filter.TagsAll {
		query = query.Where(
			"id IN (SELECT document_id FROM document_tags WHERE tag_id = ?)",
			tagID,
		)
	}
	if filter.Tagged {
		query = query.Where("id IN (SELECT document_id FROM document_tags)")
	}
	if filter.Untagged {
		query = query.Where("id NOT IN (SELECT document_id FROM document_tags)")
	}
	if filter.InboxOnly {
		query = query.Where(
			"id IN (SELECT document_id FROM document_tags dt JOIN tags t ON t.id = dt.tag_id WHERE t.is_inbox_tag = ?)",
			true,
		)
	}
	if filter.ASN != nil {
		query = query.Where("archive_serial_number = ?", *filter.ASN)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created <= ?", *filter.CreatedBefore)
	}
	if filter.AddedAfter != nil {
		query = query.Where("added >= ?", *filter.AddedAfter)
	}
	if filter.AddedBefore != nil {
		query = query.Where("added <= ?", *filter.AddedBefore)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	return query
}

// FindByIDs returns the subset of the given documents the viewer may see
func (r *GormDocumentRepository) FindByIDs(ctx context.Context, viewer shared.Viewer, ids []uuid.UUID) ([]*documents.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var docs []*documents.Document
	query := applyVisibility(r.db.WithContext(ctx).Model(&documents.Document{}), viewer)
	if err := query.Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, err
	}

	docIDs := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
	}
	tagsByDoc, err := r.TagIDsFor(ctx, docIDs)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.TagIDs = tagsByDoc[d.ID]
	}
	return docs, nil
}

// FindByChecksum finds a document by the checksum of its original file
func (r *GormDocumentRepository) FindByChecksum(ctx context.Context, checksum string) (*documents.Document, error) {
	var doc documents.Document
	if err := r.db.WithContext(ctx).Where("checksum = ?", checksum).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByASN finds a document by its archive serial number
func (r *GormDocumentRepository) FindByASN(ctx context.Context, asn int64) (*documents.Document, error) {
	var doc documents.Document
	if err := r.db.WithContext(ctx).Where("archive_serial_number = ?", asn).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// NextASN returns the next free archive serial number
func (r *GormDocumentRepository) NextASN(ctx context.Context) (int64, error) {
	var max *int64
	if err := r.db.WithContext(ctx).
		Model(&documents.Document{}).
		Select("MAX(archive_serial_number)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

// Save creates or updates a document and syncs its tag associations
func (r *GormDocumentRepository) Save(ctx context.Context, doc *documents.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		return replaceTags(tx, doc.ID, doc.TagIDs)
	})
}

// Delete deletes a document with its associations
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&documentTag{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&documents.Note{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&documents.CustomMetadata{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&documents.Document{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts documents matching the filter
func (r *GormDocumentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&documents.Document{})
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", pattern)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReplaceTags swaps the document's tag set atomically
func (r *GormDocumentRepository) ReplaceTags(ctx context.Context, documentID uuid.UUID, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceTags(tx, documentID, tagIDs)
	})
}

func replaceTags(tx *gorm.DB, documentID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := tx.Delete(&documentTag{}, "document_id = ?", documentID).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]documentTag, 0, len(tagIDs))
	seen := make(map[uuid.UUID]struct{}, len(tagIDs))
	for _, tid := range tagIDs {
		if _, dup := seen[tid]; dup {
			continue
		}
		seen[tid] = struct{}{}
		rows = append(rows, documentTag{DocumentID: documentID, TagID: tid})
	}
	return tx.Create(&rows).Error
}

// TagIDsFor returns tag ids per document
func (r *GormDocumentRepository) TagIDsFor(ctx context.Context, documentIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID, len(documentIDs))
	if len(documentIDs) == 0 {
		return result, nil
	}
	var rows []documentTag
	if err := r.db.WithContext(ctx).
		Where("document_id IN ?", documentIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.DocumentID] = append(result[row.DocumentID], row.TagID)
	}
	return result, nil
}

func (r *GormDocumentRepository) loadTags(ctx context.Context, doc *documents.Document) error {
	tagsByDoc, err := r.TagIDsFor(ctx, []uuid.UUID{doc.ID})
	if err != nil {
		return err
	}
	doc.TagIDs = tagsByDoc[doc.ID]
	return nil
}

func (r *GormDocumentRepository) noteCounts(ctx context.Context, documentIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(documentIDs))
	if len(documentIDs) == 0 {
		return counts, nil
	}
	type row struct {
		DocumentID uuid.UUID
		Count      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Table("document_notes").
		Select("document_id, COUNT(*) AS count").
		Where("document_id IN ?", documentIDs).
		Group("document_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rw := range rows {
		counts[rw.DocumentID] = rw.Count
	}
	return counts, nil
}

// Statistics aggregates dashboard numbers over what the viewer can see
func (r *GormDocumentRepository) Statistics(ctx context.Context, viewer shared.Viewer) (*documents.Statistics, error) {
	stats := &documents.Statistics{MimeTypeCounts: []documents.MimeTypeCount{}}

	visible := func() *gorm.DB {
		return applyVisibility(r.db.WithContext(ctx).Model(&documents.Document{}), viewer)
	}

	if err := visible().Count(&stats.DocumentsTotal).Error; err != nil {
		return nil, err
	}

	var chars *int64
	if err := visible().Select("SUM(LENGTH(content))").Scan(&chars).Error; err != nil {
		return nil, err
	}
	if chars != nil {
		stats.CharacterCount = *chars
	}

	// Inbox count: documents carrying any inbox tag. Stays null when no
	// inbox tag is configured at all.
	var inboxTag taxonomy.Tag
	err := r.db.WithContext(ctx).Where("is_inbox_tag = ?", true).First(&inboxTag).Error
	if err == nil {
		stats.InboxTagID = &inboxTag.ID
		inboxQuery := visible().Where(
			"id IN (SELECT document_id FROM document_tags dt JOIN tags t ON t.id = dt.tag_id WHERE t.is_inbox_tag = ?)",
			true,
		)
		var inboxCount int64
		if err := inboxQuery.Count(&inboxCount).Error; err != nil {
			return nil, err
		}
		stats.DocumentsInbox = &inboxCount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	type mimeRow struct {
		MimeType string
		Count    int64
	}
	var mimeRows []mimeRow
	if err := visible().
		Select("mime_type, COUNT(*) AS count").
		Group("mime_type").
		Order("count DESC, mime_type ASC").
		Scan(&mimeRows).Error; err != nil {
		return nil, err
	}
	for _, rw := range mimeRows {
		stats.MimeTypeCounts = append(stats.MimeTypeCounts, documents.MimeTypeCount{
			MimeType: rw.MimeType,
			Count:    rw.Count,
		})
	}

	if err := r.db.WithContext(ctx).Model(&taxonomy.Tag{}).Count(&stats.TagCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&taxonomy.Correspondent{}).Count(&stats.CorrespondentCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&taxonomy.DocumentType{}).Count(&stats.DocumentTypeCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&taxonomy.StoragePath{}).Count(&stats.StoragePathCount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// SelectionCounts counts taxonomy usage within an explicit document selection
func (r *GormDocumentRepository) SelectionCounts(ctx context.Context, viewer shared.Viewer, documentIDs []uuid.UUID) (*documents.SelectionCounts, error) {
	result := &documents.SelectionCounts{
		SelectedCorrespondents: make(map[uuid.UUID]int64),
		SelectedTags:           make(map[uuid.UUID]int64),
		SelectedDocumentTypes:  make(map[uuid.UUID]int64),
		SelectedStoragePaths:   make(map[uuid.UUID]int64),
	}
	if len(documentIDs) == 0 {
		return result, nil
	}

	type refRow struct {
		RefID *uuid.UUID
		Count int64
	}
	countColumn := func(column string, into map[uuid.UUID]int64) error {
		var rows []refRow
		query := applyVisibility(r.db.WithContext(ctx).Model(&documents.Document{}), viewer).
			Select(column+" AS ref_id, COUNT(*) AS count").
			Where("id IN ?", documentIDs).
			Where(column + " IS NOT NULL").
			Group(column)
		if err := query.Scan(&rows).Error; err != nil {
			return err
		}
		for _, rw := range rows {
			if rw.RefID != nil {
				into[*rw.RefID] = rw.Count
			}
		}
		return nil
	}

	if err := countColumn("correspondent_id", result.SelectedCorrespondents); err != nil {
		return nil, err
	}
	if err := countColumn("document_type_id", result.SelectedDocumentTypes); err != nil {
		return nil, err
	}
	if err := countColumn("storage_path_id", result.SelectedStoragePaths); err != nil {
		return nil, err
	}

	type tagRow struct {
		TagID uuid.UUID
		Count int64
	}
	var tagRows []tagRow
	tagQuery := r.db.WithContext(ctx).
		Table("document_tags").
		Select("document_tags.tag_id AS tag_id, COUNT(*) AS count").
		Joins("JOIN documents ON documents.id = document_tags.document_id").
		Where("document_tags.document_id IN ?", documentIDs).
		Group("document_tags.tag_id")
	tagQuery = applyVisibilityAlias(tagQuery, viewer, "documents")
	if err := tagQuery.Scan(&tagRows).Error; err != nil {
		return nil, err
	}
	for _, rw := range tagRows {
		result.SelectedTags[rw.TagID] = rw.Count
	}

	return result, nil
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ documents.DocumentRepository = (*GormDocumentRepository)(nil)
