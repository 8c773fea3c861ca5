package taxonomy

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// DocumentTypeService handles document type operations
type DocumentTypeService struct {
	documentTypeRepo taxonomy.DocumentTypeRepository
}

// NewDocumentTypeService creates a new DocumentTypeService
func NewDocumentTypeService(documentTypeRepo taxonomy.DocumentTypeRepository) *DocumentTypeService {
	return &DocumentTypeService{documentTypeRepo: documentTypeRepo}
}

// Create creates a document type owned by the requesting user
func (s *DocumentTypeService) Create(ctx context.Context, viewer shared.Viewer, req CreateDocumentTypeRequest) (*DocumentTypeResponse, error) {
	if _, err := s.documentTypeRepo.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Document type with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	documentType, err := taxonomy.NewDocumentType(req.Name)
	if err != nil {
		return nil, err
	}
	documentType.SetOwner(viewer.UserID)
	if err := applyMatchingFields(&documentType.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.documentTypeRepo.Save(ctx, documentType); err != nil {
		return nil, err
	}
	return ToDocumentTypeResponse(documentType, taxonomy.UsageCounts{}), nil
}

// GetByID retrieves a document type visible to the viewer
func (s *DocumentTypeService) GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*DocumentTypeResponse, error) {
	documentType, err := s.documentTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !documentType.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	counts, err := s.usageFor(ctx, viewer, documentType.ID)
	if err != nil {
		return nil, err
	}
	return ToDocumentTypeResponse(documentType, counts), nil
}

// List returns the viewer's visible document types with counts
func (s *DocumentTypeService) List(ctx context.Context, viewer shared.Viewer, filter ListFilter) ([]*DocumentTypeResponse, int64, error) {
	documentTypes, counts, total, err := s.documentTypeRepo.FindAccessible(ctx, viewer, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*DocumentTypeResponse, len(documentTypes))
	for i, documentType := range documentTypes {
		responses[i] = ToDocumentTypeResponse(documentType, counts[documentType.ID])
	}
	return responses, total, nil
}

// Update modifies a document type the viewer may edit
func (s *DocumentTypeService) Update(ctx context.Context, viewer shared.Viewer, id uuid.UUID, req UpdateDocumentTypeRequest) (*DocumentTypeResponse, error) {
	documentType, err := s.documentTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !documentType.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	if !documentType.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	if req.Name != nil && *req.Name != documentType.Name {
		if _, err := s.documentTypeRepo.FindByName(ctx, *req.Name); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Document type with this name already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if err := documentType.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if err := applyMatchingFields(&documentType.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.documentTypeRepo.Save(ctx, documentType); err != nil {
		return nil, err
	}
	counts, err := s.usageFor(ctx, viewer, documentType.ID)
	if err != nil {
		return nil, err
	}
	return ToDocumentTypeResponse(documentType, counts), nil
}

// Delete removes a document type, clearing the reference on documents
func (s *DocumentTypeService) Delete(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error {
	documentType, err := s.documentTypeRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !documentType.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrNotFound
	}
	if !documentType.EditableBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrForbidden
	}
	return s.documentTypeRepo.Delete(ctx, id)
}

func (s *DocumentTypeService) usageFor(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (taxonomy.UsageCounts, error) {
	_, counts, _, err := s.documentTypeRepo.FindAccessible(ctx, viewer, shared.Filter{
		Filters: map[string]interface{}{"id": id},
	})
	if err != nil {
		return taxonomy.UsageCounts{}, err
	}
	return counts[id], nil
}
