package taxonomy

import (
	"time"

	"github.com/dms/backend/internal/domain/shared"
)

// DocumentType classifies documents (invoice, contract, receipt, ...)
type DocumentType struct {
	shared.OwnedAggregateRoot
	Name string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Slug string `gorm:"type:varchar(128);not null"`
	MatchingRule
}

// TableName returns the table name for GORM
func (DocumentType) TableName() string {
	return "document_types"
}

// NewDocumentType creates a new document type
func NewDocumentType(name string) (*DocumentType, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &DocumentType{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		Name:               name,
		Slug:               Slugify(name),
		MatchingRule:       MatchingRule{MatchingAlgorithm: MatchAny, IsInsensitive: true},
	}, nil
}

// Rename changes the document type name and refreshes the slug
func (d *DocumentType) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	d.Name = name
	d.Slug = Slugify(name)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}
