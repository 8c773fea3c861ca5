package documents

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomMetadataService handles free-form key/value annotations on documents
type CustomMetadataService struct {
	metadata  documents.CustomMetadataRepository
	documents documents.DocumentRepository
}

// NewCustomMetadataService creates a new CustomMetadataService
func NewCustomMetadataService(metadata documents.CustomMetadataRepository, docs documents.DocumentRepository) *CustomMetadataService {
	return &CustomMetadataService{metadata: metadata, documents: docs}
}

// List returns the document's metadata entries
func (s *CustomMetadataService) List(ctx context.Context, viewer shared.Viewer, documentID uuid.UUID) ([]*CustomMetadataResponse, error) {
	if _, err := s.loadDocument(ctx, viewer, documentID); err != nil {
		return nil, err
	}
	entries, err := s.metadata.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	responses := make([]*CustomMetadataResponse, len(entries))
	for i, entry := range entries {
		responses[i] = ToCustomMetadataResponse(entry)
	}
	return responses, nil
}

// Create adds a metadata entry. A duplicate key overwrites the existing
// value rather than producing a second entry.
func (s *CustomMetadataService) Create(ctx context.Context, viewer shared.Viewer, documentID uuid.UUID, req CreateCustomMetadataRequest) (*CustomMetadataResponse, error) {
	doc, err := s.loadDocument(ctx, viewer, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	entries, err := s.metadata.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.Key)
	var saved *documents.CustomMetadata
	for _, entry := range entries {
		if entry.Key == key {
			entry.Value = req.Value
			saved = entry
			break
		}
	}
	if saved == nil {
		saved, err = documents.NewCustomMetadata(documentID, key, req.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, saved)
	}

	if err := s.metadata.Replace(ctx, documentID, entries); err != nil {
		return nil, err
	}
	return ToCustomMetadataResponse(saved), nil
}

func (s *CustomMetadataService) loadDocument(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*documents.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}
