package taxonomy

import (
	"regexp"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
)

// Tag labels documents. Tags participate in matching (auto-tagging during
// consumption) and one tag may be designated as the inbox tag, which newly
// consumed documents receive and which feeds the inbox statistic.
type Tag struct {
	shared.OwnedAggregateRoot
	Name       string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Slug       string `gorm:"type:varchar(128);not null"`
	Color      string `gorm:"type:varchar(7);not null;default:'#a6cee3'"`
	IsInboxTag bool   `gorm:"not null;default:false"`
	MatchingRule
}

// TableName returns the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NewTag creates a new tag
func NewTag(name string) (*Tag, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Tag{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		Name:               name,
		Slug:               Slugify(name),
		Color:              "#a6cee3",
		MatchingRule:       MatchingRule{MatchingAlgorithm: MatchAny, IsInsensitive: true},
	}, nil
}

// Rename changes the tag name and refreshes the slug
func (t *Tag) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	t.Name = name
	t.Slug = Slugify(name)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// SetColor sets the display color, validating the hex format
func (t *Tag) SetColor(color string) error {
	if !hexColorRe.MatchString(color) {
		return shared.NewDomainError("INVALID_INPUT", "Color must be a #rrggbb hex value")
	}
	t.Color = color
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// TextColor picks a readable foreground color for the tag's background
func (t *Tag) TextColor() string {
	if len(t.Color) != 7 {
		return "#000000"
	}
	r := hexByte(t.Color[1:3])
	g := hexByte(t.Color[3:5])
	b := hexByte(t.Color[5:7])
	luminance := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if luminance > 160 {
		return "#000000"
	}
	return "#ffffff"
}

// SetInbox marks or unmarks the tag as the inbox tag
func (t *Tag) SetInbox(inbox bool) {
	t.IsInboxTag = inbox
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

func hexByte(s string) int {
	n := 0
	for _, c := range strings.ToLower(s) {
		n *= 16
		switch {
		case c >= '0' && c <= '9':
			n += int(c - '0')
		case c >= 'a' && c <= 'f':
			n += int(c-'a') + 10
		}
	}
	return n
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify produces a URL-safe identifier from a display name
func Slugify(name string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Name is required")
	}
	if len(name) > 128 {
		return shared.NewDomainError("INVALID_INPUT", "Name cannot exceed 128 characters")
	}
	return nil
}
