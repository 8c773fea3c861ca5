package documents

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/dms/backend/internal/infrastructure/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReindexerDeps collects the lookups needed to denormalize a document
// into its search index entry.
type ReindexerDeps struct {
	Documents      documents.DocumentRepository
	Notes          documents.NoteRepository
	Tags           taxonomy.TagRepository
	Correspondents taxonomy.CorrespondentRepository
	DocumentTypes  taxonomy.DocumentTypeRepository
	StoragePaths   taxonomy.StoragePathRepository
	Index          search.DocumentIndex
}

// Reindexer keeps the search index in step with document mutations.
// Index writes are best effort; the database stays the source of truth
// and failures are only logged.
type Reindexer struct {
	deps   ReindexerDeps
	logger *zap.Logger
}

// NewReindexer creates a reindexer
func NewReindexer(deps ReindexerDeps, logger *zap.Logger) *Reindexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reindexer{deps: deps, logger: logger}
}

// Reindex rewrites the document's index entry
func (r *Reindexer) Reindex(ctx context.Context, doc *documents.Document) {
	var correspondent, documentType, storagePath string
	if doc.CorrespondentID != nil {
		if c, err := r.deps.Correspondents.FindByID(ctx, *doc.CorrespondentID); err == nil {
			correspondent = c.Name
		}
	}
	if doc.DocumentTypeID != nil {
		if dt, err := r.deps.DocumentTypes.FindByID(ctx, *doc.DocumentTypeID); err == nil {
			documentType = dt.Name
		}
	}
	if doc.StoragePathID != nil {
		if sp, err := r.deps.StoragePaths.FindByID(ctx, *doc.StoragePathID); err == nil {
			storagePath = sp.Name
		}
	}

	var tagNames []string
	if len(doc.TagIDs) > 0 {
		if tags, err := r.deps.Tags.FindByIDs(ctx, doc.TagIDs); err == nil {
			for _, tag := range tags {
				tagNames = append(tagNames, tag.Name)
			}
		}
	}

	var noteText string
	if notes, err := r.deps.Notes.FindByDocument(ctx, doc.ID); err == nil {
		parts := make([]string, len(notes))
		for i, note := range notes {
			parts[i] = note.Content
		}
		noteText = strings.Join(parts, "\n")
	}

	entry := search.NewIndexedDocument(doc, correspondent, documentType, storagePath, tagNames, noteText)
	if err := r.deps.Index.Index(ctx, entry); err != nil {
		r.logger.Warn("failed to index document",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
	}
}

// Remove drops the document's index entry
func (r *Reindexer) Remove(ctx context.Context, id uuid.UUID) {
	if err := r.deps.Index.Delete(ctx, id); err != nil {
		r.logger.Warn("failed to remove document from index",
			zap.String("document_id", id.String()),
			zap.Error(err))
	}
}
