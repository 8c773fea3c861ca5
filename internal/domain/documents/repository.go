package documents

import (
	"context"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter narrows a document listing beyond the generic filter
type DocumentFilter struct {
	shared.Filter
	CorrespondentID *uuid.UUID
	DocumentTypeID  *uuid.UUID
	StoragePathID   *uuid.UUID
	TagIDs          []uuid.UUID
	// TagsAll requires every listed tag to be present
	TagsAll   []uuid.UUID
	Tagged    bool
	Untagged  bool
	InboxOnly bool
	// WithoutStoragePath matches documents with no storage path assigned
	WithoutStoragePath bool
	CreatedAfter       *time.Time
	CreatedBefore      *time.Time
	AddedAfter         *time.Time
	AddedBefore        *time.Time
	ASN                *int64
	TitleContains      string
	// IDs restricts the result to an explicit set, preserving no particular
	// order. Used to hydrate search results.
	IDs []uuid.UUID
}

// Statistics aggregates the numbers shown on the dashboard. The inbox
// count is null when no inbox tag is configured, which is distinct from
// an inbox tag with zero documents.
type Statistics struct {
	DocumentsTotal     int64           `json:"documents_total"`
	DocumentsInbox     *int64          `json:"documents_inbox"`
	InboxTagID         *uuid.UUID      `json:"inbox_tag"`
	CharacterCount     int64           `json:"character_count"`
	TagCount           int64           `json:"tag_count"`
	CorrespondentCount int64           `json:"correspondent_count"`
	DocumentTypeCount  int64           `json:"document_type_count"`
	StoragePathCount   int64           `json:"storage_path_count"`
	MimeTypeCounts     []MimeTypeCount `json:"document_file_type_counts"`
}

// MimeTypeCount is one entry of the mime type histogram, most frequent first
type MimeTypeCount struct {
	MimeType string `json:"mime_type"`
	Count    int64  `json:"mime_type_count"`
}

// SelectionCounts maps taxonomy object ids to how many of the selected
// documents carry each of them.
type SelectionCounts struct {
	SelectedCorrespondents map[uuid.UUID]int64
	SelectedTags           map[uuid.UUID]int64
	SelectedDocumentTypes  map[uuid.UUID]int64
	SelectedStoragePaths   map[uuid.UUID]int64
}

// DocumentRepository defines persistence for documents and their associations
type DocumentRepository interface {
	shared.Repository[*Document]
	// FindAccessible lists documents visible to the viewer. Note counts are
	// returned alongside so listings avoid per-row queries.
	FindAccessible(ctx context.Context, viewer shared.Viewer, filter DocumentFilter) (*shared.Paginated[*Document], map[uuid.UUID]int64, error)
	FindByIDs(ctx context.Context, viewer shared.Viewer, ids []uuid.UUID) ([]*Document, error)
	FindByChecksum(ctx context.Context, checksum string) (*Document, error)
	FindByASN(ctx context.Context, asn int64) (*Document, error)
	NextASN(ctx context.Context) (int64, error)

	ReplaceTags(ctx context.Context, documentID uuid.UUID, tagIDs []uuid.UUID) error
	TagIDsFor(ctx context.Context, documentIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)

	Statistics(ctx context.Context, viewer shared.Viewer) (*Statistics, error)
	SelectionCounts(ctx context.Context, viewer shared.Viewer, documentIDs []uuid.UUID) (*SelectionCounts, error)
}

// NoteRepository defines persistence for document notes
type NoteRepository interface {
	Save(ctx context.Context, note *Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*Note, error)
	// FindByDocument returns the document's notes newest first
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*Note, error)
	CountByDocument(ctx context.Context, documentID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomMetadataRepository defines persistence for custom field annotations
type CustomMetadataRepository interface {
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*CustomMetadata, error)
	// Replace swaps the document's full metadata set atomically
	Replace(ctx context.Context, documentID uuid.UUID, entries []*CustomMetadata) error
}
