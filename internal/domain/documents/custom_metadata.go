package documents

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomMetadata is a free-form key/value annotation on a document,
// replaced wholesale when the client saves the metadata editor.
type CustomMetadata struct {
	shared.BaseEntity
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index:idx_doc_meta_key,unique"`
	Key        string    `gorm:"type:varchar(128);not null;index:idx_doc_meta_key,unique"`
	Value      string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CustomMetadata) TableName() string {
	return "document_custom_metadata"
}

// NewCustomMetadata creates a metadata entry for a document
func NewCustomMetadata(documentID uuid.UUID, key, value string) (*CustomMetadata, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Metadata key is required")
	}
	if len(key) > 128 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Metadata key cannot exceed 128 characters")
	}
	return &CustomMetadata{
		BaseEntity: shared.NewBaseEntity(),
		DocumentID: documentID,
		Key:        key,
		Value:      value,
	}, nil
}
