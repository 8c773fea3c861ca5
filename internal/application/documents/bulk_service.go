package documents

import (
	"context"
	"io"
	"sort"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/dms/backend/internal/infrastructure/archive"
	"github.com/dms/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bulk edit methods
const (
	BulkSetCorrespondent = "set_correspondent"
	BulkSetDocumentType  = "set_document_type"
	BulkSetStoragePath   = "set_storage_path"
	BulkAddTag           = "add_tag"
	BulkRemoveTag        = "remove_tag"
	BulkModifyTags       = "modify_tags"
	BulkDelete           = "delete"
)

// BulkServiceDeps collects the collaborators of the bulk service
type BulkServiceDeps struct {
	Documents      documents.DocumentRepository
	Correspondents taxonomy.CorrespondentRepository
	DocumentTypes  taxonomy.DocumentTypeRepository
	StoragePaths   taxonomy.StoragePathRepository
	Tags           taxonomy.TagRepository
	Storage        storage.FileStorage
	Reindexer      *Reindexer
}

// BulkService applies edits and builds downloads over document selections
type BulkService struct {
	deps   BulkServiceDeps
	logger *zap.Logger
}

// BulkServiceOption configures the bulk service
type BulkServiceOption func(*BulkService)

// WithBulkServiceLogger sets the logger
func WithBulkServiceLogger(logger *zap.Logger) BulkServiceOption {
	return func(s *BulkService) {
		s.logger = logger
	}
}

// NewBulkService creates a new BulkService
func NewBulkService(deps BulkServiceDeps, opts ...BulkServiceOption) *BulkService {
	s := &BulkService{deps: deps, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BulkEdit applies one edit method to every selected document. The whole
// selection must be visible and editable to the viewer or nothing happens.
func (s *BulkService) BulkEdit(ctx context.Context, viewer shared.Viewer, req BulkEditRequest) (int, error) {
	docs, err := s.loadSelection(ctx, viewer, req.Documents)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if !doc.EditableBy(viewer.UserID, viewer.Superuser) {
			return 0, shared.ErrForbidden
		}
	}

	apply, err := s.buildEdit(ctx, req)
	if err != nil {
		return 0, err
	}

	for _, doc := range docs {
		if err := apply(doc); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}

// buildEdit resolves the method and its parameters into a per-document
// action. Parameter lookups happen once, up front, so an unknown tag id
// fails before any document is touched.
func (s *BulkService) buildEdit(ctx context.Context, req BulkEditRequest) (func(*documents.Document) error, error) {
	switch req.Method {
	case BulkSetCorrespondent:
		id, err := s.resolveAssignment(ctx, req.Parameters, "correspondent", func(ctx context.Context, id uuid.UUID) error {
			_, err := s.deps.Correspondents.FindByID(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}
		return func(doc *documents.Document) error {
			doc.AssignCorrespondent(id)
			return s.saveAndReindex(ctx, doc)
		}, nil

	case BulkSetDocumentType:
		id, err := s.resolveAssignment(ctx, req.Parameters, "document_type", func(ctx context.Context, id uuid.UUID) error {
			_, err := s.deps.DocumentTypes.FindByID(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}
		return func(doc *documents.Document) error {
			doc.AssignDocumentType(id)
			return s.saveAndReindex(ctx, doc)
		}, nil

	case BulkSetStoragePath:
		id, err := s.resolveAssignment(ctx, req.Parameters, "storage_path", func(ctx context.Context, id uuid.UUID) error {
			_, err := s.deps.StoragePaths.FindByID(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}
		return func(doc *documents.Document) error {
			doc.AssignStoragePath(id)
			return s.saveAndReindex(ctx, doc)
		}, nil

	case BulkAddTag:
		tagID, err := s.resolveTag(ctx, req.Parameters, "tag")
		if err != nil {
			return nil, err
		}
		return func(doc *documents.Document) error {
			doc.AddTag(tagID)
			return s.saveAndReindex(ctx, doc)
		}, nil

	case BulkRemoveTag:
		tagID, err := s.resolveTag(ctx, req.Parameters, "tag")
		if err != nil {
			return nil, err
		}
		return func(doc *documents.Document) error {
			doc.RemoveTag(tagID)
			return s.saveAndReindex(ctx, doc)
		}, nil

	case BulkModifyTags:
		addIDs, err := s.resolveTagList(ctx, req.Parameters, "add_tags")
		if err != nil {
			return nil, err
		}
		removeIDs, err := s.resolveTagList(ctx, req.Parameters, "remove_tags")
		if err != nil {
			return nil, err
		}
		return func(doc *documents.Document) error {
			for _, id := range addIDs {
				doc.AddTag(id)
			}
			for _, id := range removeIDs {
				doc.RemoveTag(id)
			}
			return s.saveAndReindex(ctx, doc)
		}, nil

	case BulkDelete:
		return func(doc *documents.Document) error {
			return s.deleteDocument(ctx, doc)
		}, nil
	}
	return nil, shared.NewDomainError("INVALID_INPUT", "Unknown bulk edit method "+req.Method)
}

// SelectionData computes how often each taxonomy object appears in the
// selected documents
func (s *BulkService) SelectionData(ctx context.Context, viewer shared.Viewer, req SelectionDataRequest) (*SelectionDataResponse, error) {
	counts, err := s.deps.Documents.SelectionCounts(ctx, viewer, req.Documents)
	if err != nil {
		return nil, err
	}
	return &SelectionDataResponse{
		SelectedCorrespondents: toSelectionCounts(counts.SelectedCorrespondents),
		SelectedTags:           toSelectionCounts(counts.SelectedTags),
		SelectedDocumentTypes:  toSelectionCounts(counts.SelectedDocumentTypes),
		SelectedStoragePaths:   toSelectionCounts(counts.SelectedStoragePaths),
	}, nil
}

// BulkDownload streams a zip of the selected documents into w
func (s *BulkService) BulkDownload(ctx context.Context, viewer shared.Viewer, req BulkDownloadRequest, w io.Writer) error {
	content := archive.Content(req.Content)
	if req.Content == "" {
		content = archive.ContentArchive
	}
	if !archive.ValidContent(content) {
		return shared.NewDomainError("INVALID_INPUT", "Unknown content choice "+req.Content)
	}
	compression := archive.Compression(req.Compression)
	if req.Compression == "" {
		compression = archive.CompressionDeflate
	}
	if !archive.ValidCompression(compression) {
		return shared.NewDomainError("INVALID_INPUT", "Unknown compression choice "+req.Compression)
	}

	docs, err := s.loadSelection(ctx, viewer, req.Documents)
	if err != nil {
		return err
	}

	correspondents := map[uuid.UUID]*taxonomy.Correspondent{}
	if req.FollowFormatting {
		for _, doc := range docs {
			if doc.CorrespondentID == nil {
				continue
			}
			if _, ok := correspondents[*doc.CorrespondentID]; ok {
				continue
			}
			c, err := s.deps.Correspondents.FindByID(ctx, *doc.CorrespondentID)
			if err != nil {
				continue
			}
			correspondents[*doc.CorrespondentID] = c
		}
	}

	builder := archive.NewZipBuilder(w, s.deps.Storage, content, compression, req.FollowFormatting)
	for _, doc := range docs {
		var correspondent *taxonomy.Correspondent
		if doc.CorrespondentID != nil {
			correspondent = correspondents[*doc.CorrespondentID]
		}
		if err := builder.AddDocument(ctx, doc, correspondent); err != nil {
			return err
		}
	}
	return builder.Close()
}

// loadSelection fetches the selected documents, rejecting the request when
// any of them is missing or hidden from the viewer
func (s *BulkService) loadSelection(ctx context.Context, viewer shared.Viewer, ids []uuid.UUID) ([]*documents.Document, error) {
	if len(ids) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document selection is empty")
	}
	docs, err := s.deps.Documents.FindByIDs(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}
	if len(docs) != len(ids) {
		return nil, shared.ErrNotFound
	}
	return docs, nil
}

func (s *BulkService) saveAndReindex(ctx context.Context, doc *documents.Document) error {
	if err := s.deps.Documents.Save(ctx, doc); err != nil {
		return err
	}
	s.deps.Reindexer.Reindex(ctx, doc)
	return nil
}

func (s *BulkService) deleteDocument(ctx context.Context, doc *documents.Document) error {
	if err := s.deps.Documents.Delete(ctx, doc.ID); err != nil {
		return err
	}
	for _, key := range []string{doc.OriginalKey, doc.ArchiveKey, doc.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.deps.Storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete stored file",
				zap.String("document_id", doc.ID.String()),
				zap.String("key", key),
				zap.Error(err))
		}
	}
	s.deps.Reindexer.Remove(ctx, doc.ID)
	return nil
}

// resolveAssignment reads an optional id parameter. A missing or null value
// clears the assignment; a present id must reference an existing object.
func (s *BulkService) resolveAssignment(ctx context.Context, params map[string]interface{}, key string, exists func(context.Context, uuid.UUID) error) (*uuid.UUID, error) {
	id, err := paramID(params, key)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, nil
	}
	if err := exists(ctx, *id); err != nil {
		return nil, err
	}
	return id, nil
}

func (s *BulkService) resolveTag(ctx context.Context, params map[string]interface{}, key string) (uuid.UUID, error) {
	id, err := paramID(params, key)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Parameter "+key+" is required")
	}
	if _, err := s.deps.Tags.FindByID(ctx, *id); err != nil {
		return uuid.Nil, err
	}
	return *id, nil
}

func (s *BulkService) resolveTagList(ctx context.Context, params map[string]interface{}, key string) ([]uuid.UUID, error) {
	ids, err := paramIDList(params, key)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, err := s.deps.Tags.FindByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// paramID extracts a uuid parameter, treating absence and null alike
func paramID(params map[string]interface{}, key string) (*uuid.UUID, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}
	str, ok := raw.(string)
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "Parameter "+key+" must be an id")
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Parameter "+key+" must be an id")
	}
	return &id, nil
}

// paramIDList extracts a list of uuid parameters; absence means empty
func paramIDList(params map[string]interface{}, key string) ([]uuid.UUID, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "Parameter "+key+" must be a list of ids")
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, shared.NewDomainError("INVALID_INPUT", "Parameter "+key+" must be a list of ids")
		}
		id, err := uuid.Parse(str)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Parameter "+key+" must be a list of ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// toSelectionCounts flattens a count map into a stable, sorted list
func toSelectionCounts(counts map[uuid.UUID]int64) []SelectionCount {
	result := make([]SelectionCount, 0, len(counts))
	for id, count := range counts {
		result = append(result, SelectionCount{ID: id, DocumentCount: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}
