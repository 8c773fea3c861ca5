package persistence

import (
	"context"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomMetadataRepository implements CustomMetadataRepository using GORM
type GormCustomMetadataRepository struct {
	db *gorm.DB
}

// NewGormCustomMetadataRepository creates a new GormCustomMetadataRepository
func NewGormCustomMetadataRepository(db *gorm.DB) *GormCustomMetadataRepository {
	return &GormCustomMetadataRepository{db: db}
}

// FindByDocument returns a document's metadata entries ordered by key
func (r *GormCustomMetadataRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*documents.CustomMetadata, error) {
	var entries []*documents.CustomMetadata
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("key ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Replace swaps the document's full metadata set atomically
func (r *GormCustomMetadataRepository) Replace(ctx context.Context, documentID uuid.UUID, entries []*documents.CustomMetadata) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&documents.CustomMetadata{}, "document_id = ?", documentID).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

// Ensure GormCustomMetadataRepository implements CustomMetadataRepository
var _ documents.CustomMetadataRepository = (*GormCustomMetadataRepository)(nil)
