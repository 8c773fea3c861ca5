package documents

import (
	"context"
	"errors"
	"time"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/dms/backend/internal/infrastructure/consumer"
	"github.com/dms/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentServiceDeps collects the collaborators of the document service
type DocumentServiceDeps struct {
	Documents      documents.DocumentRepository
	Notes          documents.NoteRepository
	Tags           taxonomy.TagRepository
	Correspondents taxonomy.CorrespondentRepository
	DocumentTypes  taxonomy.DocumentTypeRepository
	StoragePaths   taxonomy.StoragePathRepository
	Storage        storage.FileStorage
	Reindexer      *Reindexer
}

// DocumentService handles document retrieval, metadata updates and file
// serving
type DocumentService struct {
	deps   DocumentServiceDeps
	logger *zap.Logger
}

// DocumentServiceOption configures the document service
type DocumentServiceOption func(*DocumentService)

// WithDocumentServiceLogger sets the logger
func WithDocumentServiceLogger(logger *zap.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(deps DocumentServiceDeps, opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{deps: deps, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the viewer's visible documents matching the filters
func (s *DocumentService) List(ctx context.Context, viewer shared.Viewer, req ListRequest) ([]*DocumentResponse, int64, error) {
	page, noteCounts, err := s.deps.Documents.FindAccessible(ctx, viewer, toDocumentFilter(req))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*DocumentResponse, len(page.Items))
	for i, doc := range page.Items {
		responses[i] = ToDocumentResponse(doc, noteCounts[doc.ID])
		if req.TruncateContent {
			responses[i].Truncate()
		}
	}
	return responses, page.Total, nil
}

// Get retrieves a single document visible to the viewer
func (s *DocumentService) Get(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	numNotes, err := s.deps.Notes.CountByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponse(doc, numNotes), nil
}

// Update modifies a document's metadata. Absent fields stay unchanged and
// explicit nulls clear assignments.
func (s *DocumentService) Update(ctx context.Context, viewer shared.Viewer, id uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	if req.Title != nil {
		if err := doc.SetTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		doc.SetContent(*req.Content)
	}
	if req.Created != nil {
		doc.SetCreated(*req.Created)
	}
	if req.CorrespondentID.Present {
		doc.AssignCorrespondent(req.CorrespondentID.Value)
	}
	if req.DocumentTypeID.Present {
		doc.AssignDocumentType(req.DocumentTypeID.Value)
	}
	if req.StoragePathID.Present {
		doc.AssignStoragePath(req.StoragePathID.Value)
	}
	if req.ArchiveSerialNumber.Present {
		if err := s.checkASNFree(ctx, doc, req.ArchiveSerialNumber.Value); err != nil {
			return nil, err
		}
		if err := doc.SetASN(req.ArchiveSerialNumber.Value); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		tagIDs := *req.Tags
		found, err := s.deps.Tags.FindByIDs(ctx, tagIDs)
		if err != nil {
			return nil, err
		}
		if len(found) != len(tagIDs) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Unknown tag in tag list")
		}
		doc.ReplaceTags(tagIDs)
	}

	if err := s.deps.Documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.deps.Reindexer.Reindex(ctx, doc)

	numNotes, err := s.deps.Notes.CountByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponse(doc, numNotes), nil
}

// Delete removes a document together with its stored files and index entry
func (s *DocumentService) Delete(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error {
	doc, err := s.load(ctx, viewer, id)
	if err != nil {
		return err
	}
	if !doc.EditableBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrForbidden
	}

	if err := s.deps.Documents.Delete(ctx, id); err != nil {
		return err
	}
	for _, key := range []string{doc.OriginalKey, doc.ArchiveKey, doc.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.deps.Storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete stored file",
				zap.String("document_id", id.String()),
				zap.String("key", key),
				zap.Error(err))
		}
	}
	s.deps.Reindexer.Remove(ctx, id)
	return nil
}

// Download opens the archived rendition, or the original when requested or
// when no archive version exists.
func (s *DocumentService) Download(ctx context.Context, viewer shared.Viewer, id uuid.UUID, original bool) (*FileDownload, error) {
	doc, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	reader, size, err := s.deps.Storage.Open(ctx, doc.FileKey(original))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, shared.ErrFileMissing
		}
		return nil, err
	}
	return &FileDownload{
		Reader:      reader,
		Size:        size,
		ContentType: doc.ServedMimeType(original),
		Filename:    doc.ServedFilename(original),
	}, nil
}

// Thumbnail opens the document's thumbnail image
func (s *DocumentService) Thumbnail(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*FileDownload, error) {
	doc, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if doc.ThumbnailKey == "" {
		return nil, shared.ErrNotFound
	}
	reader, size, err := s.deps.Storage.Open(ctx, doc.ThumbnailKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, shared.ErrFileMissing
		}
		return nil, err
	}
	return &FileDownload{
		Reader:      reader,
		Size:        size,
		ContentType: "image/webp",
		Filename:    doc.ID.String() + ".webp",
	}, nil
}

// Metadata describes the stored renditions of a document
func (s *DocumentService) Metadata(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*MetadataResponse, error) {
	doc, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	resp := &MetadataResponse{
		OriginalChecksum:  doc.Checksum,
		OriginalMimeType:  doc.MimeType,
		OriginalFileName:  doc.OriginalFilename,
		HasArchiveVersion: doc.HasArchiveVersion(),
		Language:          doc.Language,
	}
	resp.OriginalSize, err = s.objectSize(ctx, doc.OriginalKey)
	if err != nil {
		return nil, err
	}
	if doc.HasArchiveVersion() {
		size, err := s.objectSize(ctx, doc.ArchiveKey)
		if err != nil {
			return nil, err
		}
		checksum := doc.ArchiveChecksum
		mimeType := "application/pdf"
		resp.ArchiveChecksum = &checksum
		resp.ArchiveSize = &size
		resp.ArchiveMimeType = &mimeType
	}
	return resp, nil
}

// Suggestions evaluates the matching rules of the viewer's taxonomy objects
// against the document text and extracts date candidates from the content.
func (s *DocumentService) Suggestions(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*SuggestionsResponse, error) {
	doc, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	text := doc.Title + "\n" + doc.Content

	resp := &SuggestionsResponse{
		Correspondents: []uuid.UUID{},
		Tags:           []uuid.UUID{},
		DocumentTypes:  []uuid.UUID{},
		StoragePaths:   []uuid.UUID{},
		Dates:          []string{},
	}

	correspondents, _, _, err := s.deps.Correspondents.FindAccessible(ctx, viewer, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for _, c := range correspondents {
		if c.Matches(text) {
			resp.Correspondents = append(resp.Correspondents, c.ID)
		}
	}

	tags, _, _, err := s.deps.Tags.FindAccessible(ctx, viewer, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if t.Matches(text) {
			resp.Tags = append(resp.Tags, t.ID)
		}
	}

	documentTypes, _, _, err := s.deps.DocumentTypes.FindAccessible(ctx, viewer, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for _, dt := range documentTypes {
		if dt.Matches(text) {
			resp.DocumentTypes = append(resp.DocumentTypes, dt.ID)
		}
	}

	storagePaths, _, _, err := s.deps.StoragePaths.FindAccessible(ctx, viewer, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for _, sp := range storagePaths {
		if sp.Matches(text) {
			resp.StoragePaths = append(resp.StoragePaths, sp.ID)
		}
	}

	// the filename often carries the document date when the content does not
	for _, date := range consumer.ParseDates(doc.OriginalFilename+"\n"+doc.Content, time.Now()) {
		resp.Dates = append(resp.Dates, date.Format("2006-01-02"))
	}
	return resp, nil
}

// Statistics aggregates the dashboard numbers over the viewer's documents
func (s *DocumentService) Statistics(ctx context.Context, viewer shared.Viewer) (*documents.Statistics, error) {
	return s.deps.Documents.Statistics(ctx, viewer)
}

// load fetches a document and hides it from viewers without access
func (s *DocumentService) load(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*documents.Document, error) {
	doc, err := s.deps.Documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

// checkASNFree rejects an archive serial number already held by another
// document
func (s *DocumentService) checkASNFree(ctx context.Context, doc *documents.Document, asn *int64) error {
	if asn == nil {
		return nil
	}
	existing, err := s.deps.Documents.FindByASN(ctx, *asn)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != doc.ID {
		return shared.NewDomainError("ALREADY_EXISTS", "Archive serial number is already in use")
	}
	return nil
}

func (s *DocumentService) objectSize(ctx context.Context, key string) (int64, error) {
	reader, size, err := s.deps.Storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return 0, shared.ErrFileMissing
		}
		return 0, err
	}
	reader.Close()
	return size, nil
}

// toDocumentFilter maps the API listing parameters onto the repository filter
func toDocumentFilter(req ListRequest) documents.DocumentFilter {
	filter := documents.DocumentFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.Ordering,
			Search:   req.Search,
		},
		CorrespondentID: req.CorrespondentID,
		DocumentTypeID:  req.DocumentTypeID,
		StoragePathID:   req.StoragePathID,
		TagIDs:          req.TagsIn,
		TagsAll:         req.TagsAll,
		InboxOnly:       req.InboxOnly,
		ASN:             req.ASN,
		CreatedAfter:    req.CreatedAfter,
		CreatedBefore:   req.CreatedBefore,
		AddedAfter:      req.AddedAfter,
		AddedBefore:     req.AddedBefore,
		TitleContains:   req.TitleContains,
	}
	if req.Reverse {
		filter.OrderDir = "desc"
	} else {
		filter.OrderDir = "asc"
	}
	if req.IsTagged != nil {
		if *req.IsTagged {
			filter.Tagged = true
		} else {
			filter.Untagged = true
		}
	}
	return filter
}
