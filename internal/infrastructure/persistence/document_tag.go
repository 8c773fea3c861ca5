package persistence

import (
	"github.com/google/uuid"
)

// documentTag is the join row between documents and tags
type documentTag struct {
	DocumentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID      uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (documentTag) TableName() string {
	return "document_tags"
}
