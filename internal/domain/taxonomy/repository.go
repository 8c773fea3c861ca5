package taxonomy

import (
	"context"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UsageCounts carries list annotations computed alongside taxonomy objects:
// how many visible documents reference the object and, for correspondents,
// the created date of the most recent one.
type UsageCounts struct {
	DocumentCount      int64
	LastCorrespondence *time.Time
}

// TagRepository defines persistence for tags
type TagRepository interface {
	shared.Repository[*Tag]
	FindByName(ctx context.Context, name string) (*Tag, error)
	// FindAccessible lists tags visible to the viewer together with their
	// document counts, ordered by lowercased name.
	FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*Tag, map[uuid.UUID]UsageCounts, int64, error)
	FindInboxTags(ctx context.Context) ([]*Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Tag, error)
}

// CorrespondentRepository defines persistence for correspondents
type CorrespondentRepository interface {
	shared.Repository[*Correspondent]
	FindByName(ctx context.Context, name string) (*Correspondent, error)
	FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*Correspondent, map[uuid.UUID]UsageCounts, int64, error)
}

// DocumentTypeRepository defines persistence for document types
type DocumentTypeRepository interface {
	shared.Repository[*DocumentType]
	FindByName(ctx context.Context, name string) (*DocumentType, error)
	FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*DocumentType, map[uuid.UUID]UsageCounts, int64, error)
}

// StoragePathRepository defines persistence for storage paths
type StoragePathRepository interface {
	shared.Repository[*StoragePath]
	FindByName(ctx context.Context, name string) (*StoragePath, error)
	FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*StoragePath, map[uuid.UUID]UsageCounts, int64, error)
}
