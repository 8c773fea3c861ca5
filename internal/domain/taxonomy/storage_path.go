package taxonomy

import (
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
)

// StoragePath describes where a document's files are filed. Paths form a
// folder-like hierarchy through their "/"-separated path values; path
// templates may reference document placeholders like {created_year} or
// {correspondent}.
type StoragePath struct {
	shared.OwnedAggregateRoot
	Name string `gorm:"type:varchar(128);not null;uniqueIndex"`
	Slug string `gorm:"type:varchar(128);not null"`
	Path string `gorm:"type:varchar(512);not null"`
	MatchingRule
}

// TableName returns the table name for GORM
func (StoragePath) TableName() string {
	return "storage_paths"
}

// NewStoragePath creates a new storage path
func NewStoragePath(name, path string) (*StoragePath, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePath(path); err != nil {
		return nil, err
	}
	return &StoragePath{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		Name:               name,
		Slug:               Slugify(name),
		Path:               path,
		MatchingRule:       MatchingRule{MatchingAlgorithm: MatchAny, IsInsensitive: true},
	}, nil
}

// Update changes name and path together
func (s *StoragePath) Update(name, path string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validatePath(path); err != nil {
		return err
	}
	s.Name = name
	s.Slug = Slugify(name)
	s.Path = path
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// IsRoot reports whether the path has no parent folder
func (s *StoragePath) IsRoot() bool {
	return !strings.Contains(s.Path, "/")
}

func validatePath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return shared.NewDomainError("INVALID_INPUT", "Path is required")
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return shared.NewDomainError("INVALID_INPUT", "Path must be relative and must not contain '..'")
	}
	if len(path) > 512 {
		return shared.NewDomainError("INVALID_INPUT", "Path cannot exceed 512 characters")
	}
	return nil
}
