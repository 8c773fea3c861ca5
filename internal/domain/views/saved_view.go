package views

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SavedView is a stored document filter belonging to one user. Views marked
// for the dashboard or sidebar surface in the UI chrome; the filter rules are
// stored as the client sent them and replayed verbatim into list queries.
type SavedView struct {
	shared.BaseAggregateRoot
	OwnerID         uuid.UUID    `gorm:"type:uuid;not null;index"`
	Name            string       `gorm:"type:varchar(128);not null"`
	ShowOnDashboard bool         `gorm:"not null;default:false"`
	ShowInSidebar   bool         `gorm:"not null;default:false"`
	SortField       string       `gorm:"type:varchar(64);not null;default:'created'"`
	SortReverse     bool         `gorm:"not null;default:false"`
	FilterRules     []FilterRule `gorm:"foreignKey:SavedViewID;constraint:OnDelete:CASCADE"`
}

// FilterRule is one predicate of a saved view
type FilterRule struct {
	shared.BaseEntity
	SavedViewID uuid.UUID `gorm:"type:uuid;not null;index"`
	RuleType    int       `gorm:"not null"`
	Value       string    `gorm:"type:varchar(256)"`
}

// TableName returns the table name for GORM
func (SavedView) TableName() string {
	return "saved_views"
}

// TableName returns the table name for GORM
func (FilterRule) TableName() string {
	return "saved_view_filter_rules"
}

// NewSavedView creates a saved view for a user
func NewSavedView(ownerID uuid.UUID, name string) (*SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Name is required")
	}
	return &SavedView{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Name:              name,
		SortField:         "created",
	}, nil
}

// Rename changes the view name
func (v *SavedView) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Name is required")
	}
	v.Name = name
	return nil
}

// OwnedBy reports whether the view belongs to the given user
func (v *SavedView) OwnedBy(userID uuid.UUID) bool {
	return v.OwnerID == userID
}

// SavedViewRepository defines persistence for saved views
type SavedViewRepository interface {
	Save(ctx context.Context, view *SavedView) error
	FindByID(ctx context.Context, id uuid.UUID) (*SavedView, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*SavedView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
