package taxonomy

import (
	"time"

	"github.com/dms/backend/internal/domain/shared"
)

// Correspondent is the person or organization a document was exchanged with
type Correspondent struct {
	shared.OwnedAggregateRoot
	Name string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Slug string `gorm:"type:varchar(128);not null"`
	MatchingRule
}

// TableName returns the table name for GORM
func (Correspondent) TableName() string {
	return "correspondents"
}

// NewCorrespondent creates a new correspondent
func NewCorrespondent(name string) (*Correspondent, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Correspondent{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		Name:               name,
		Slug:               Slugify(name),
		MatchingRule:       MatchingRule{MatchingAlgorithm: MatchAny, IsInsensitive: true},
	}, nil
}

// Rename changes the correspondent name and refreshes the slug
func (c *Correspondent) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	c.Slug = Slugify(name)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}
