package taxonomy

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// CorrespondentService handles correspondent operations
type CorrespondentService struct {
	correspondentRepo taxonomy.CorrespondentRepository
}

// NewCorrespondentService creates a new CorrespondentService
func NewCorrespondentService(correspondentRepo taxonomy.CorrespondentRepository) *CorrespondentService {
	return &CorrespondentService{correspondentRepo: correspondentRepo}
}

// Create creates a correspondent owned by the requesting user
func (s *CorrespondentService) Create(ctx context.Context, viewer shared.Viewer, req CreateCorrespondentRequest) (*CorrespondentResponse, error) {
	if _, err := s.correspondentRepo.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Correspondent with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	correspondent, err := taxonomy.NewCorrespondent(req.Name)
	if err != nil {
		return nil, err
	}
	correspondent.SetOwner(viewer.UserID)
	if err := applyMatchingFields(&correspondent.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.correspondentRepo.Save(ctx, correspondent); err != nil {
		return nil, err
	}
	return ToCorrespondentResponse(correspondent, taxonomy.UsageCounts{}), nil
}

// GetByID retrieves a correspondent visible to the viewer
func (s *CorrespondentService) GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*CorrespondentResponse, error) {
	correspondent, err := s.correspondentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !correspondent.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	counts, err := s.usageFor(ctx, viewer, correspondent.ID)
	if err != nil {
		return nil, err
	}
	return ToCorrespondentResponse(correspondent, counts), nil
}

// List returns the viewer's visible correspondents with annotations
func (s *CorrespondentService) List(ctx context.Context, viewer shared.Viewer, filter ListFilter) ([]*CorrespondentResponse, int64, error) {
	correspondents, counts, total, err := s.correspondentRepo.FindAccessible(ctx, viewer, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*CorrespondentResponse, len(correspondents))
	for i, correspondent := range correspondents {
		responses[i] = ToCorrespondentResponse(correspondent, counts[correspondent.ID])
	}
	return responses, total, nil
}

// Update modifies a correspondent the viewer may edit
func (s *CorrespondentService) Update(ctx context.Context, viewer shared.Viewer, id uuid.UUID, req UpdateCorrespondentRequest) (*CorrespondentResponse, error) {
	correspondent, err := s.correspondentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !correspondent.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	if !correspondent.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	if req.Name != nil && *req.Name != correspondent.Name {
		if _, err := s.correspondentRepo.FindByName(ctx, *req.Name); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Correspondent with this name already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if err := correspondent.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if err := applyMatchingFields(&correspondent.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.correspondentRepo.Save(ctx, correspondent); err != nil {
		return nil, err
	}
	counts, err := s.usageFor(ctx, viewer, correspondent.ID)
	if err != nil {
		return nil, err
	}
	return ToCorrespondentResponse(correspondent, counts), nil
}

// Delete removes a correspondent. Documents keep existing with the
// reference cleared.
func (s *CorrespondentService) Delete(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error {
	correspondent, err := s.correspondentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !correspondent.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrNotFound
	}
	if !correspondent.EditableBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrForbidden
	}
	return s.correspondentRepo.Delete(ctx, id)
}

func (s *CorrespondentService) usageFor(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (taxonomy.UsageCounts, error) {
	_, counts, _, err := s.correspondentRepo.FindAccessible(ctx, viewer, shared.Filter{
		Filters: map[string]interface{}{"id": id},
	})
	if err != nil {
		return taxonomy.UsageCounts{}, err
	}
	return counts[id], nil
}
