package documents

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Note is a user comment attached to a document. Notes are returned newest
// first and their text participates in full-text search.
type Note struct {
	shared.BaseEntity
	DocumentID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID     *uuid.UUID `gorm:"type:uuid"`
	Content    string     `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Note) TableName() string {
	return "document_notes"
}

// NewNote creates a note on a document
func NewNote(documentID uuid.UUID, userID *uuid.UUID, content string) (*Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Note content is required")
	}
	return &Note{
		BaseEntity: shared.NewBaseEntity(),
		DocumentID: documentID,
		UserID:     userID,
		Content:    content,
	}, nil
}
