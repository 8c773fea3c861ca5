package views

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/views"
	"github.com/google/uuid"
)

// SavedViewService handles saved view CRUD. Views are strictly private:
// even superusers only ever see their own.
type SavedViewService struct {
	viewRepo views.SavedViewRepository
}

// NewSavedViewService creates a new SavedViewService
func NewSavedViewService(viewRepo views.SavedViewRepository) *SavedViewService {
	return &SavedViewService{viewRepo: viewRepo}
}

// List returns the viewer's own saved views
func (s *SavedViewService) List(ctx context.Context, viewer shared.Viewer) ([]*SavedViewResponse, error) {
	found, err := s.viewRepo.FindByOwner(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	responses := make([]*SavedViewResponse, len(found))
	for i, view := range found {
		responses[i] = ToSavedViewResponse(view)
	}
	return responses, nil
}

// GetByID retrieves one of the viewer's saved views
func (s *SavedViewService) GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*SavedViewResponse, error) {
	view, err := s.loadOwn(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return ToSavedViewResponse(view), nil
}

// Create stores a saved view owned by the viewer
func (s *SavedViewService) Create(ctx context.Context, viewer shared.Viewer, req CreateSavedViewRequest) (*SavedViewResponse, error) {
	view, err := views.NewSavedView(viewer.UserID, req.Name)
	if err != nil {
		return nil, err
	}
	view.ShowOnDashboard = req.ShowOnDashboard
	view.ShowInSidebar = req.ShowInSidebar
	if req.SortField != "" {
		view.SortField = req.SortField
	}
	view.SortReverse = req.SortReverse
	view.FilterRules = toFilterRules(view.ID, req.FilterRules)

	if err := s.viewRepo.Save(ctx, view); err != nil {
		return nil, err
	}
	return ToSavedViewResponse(view), nil
}

// Update modifies one of the viewer's saved views. A rule list in the
// request replaces the stored rules wholesale.
func (s *SavedViewService) Update(ctx context.Context, viewer shared.Viewer, id uuid.UUID, req UpdateSavedViewRequest) (*SavedViewResponse, error) {
	view, err := s.loadOwn(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := view.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ShowOnDashboard != nil {
		view.ShowOnDashboard = *req.ShowOnDashboard
	}
	if req.ShowInSidebar != nil {
		view.ShowInSidebar = *req.ShowInSidebar
	}
	if req.SortField != nil {
		view.SortField = *req.SortField
	}
	if req.SortReverse != nil {
		view.SortReverse = *req.SortReverse
	}
	if req.FilterRules != nil {
		view.FilterRules = toFilterRules(view.ID, *req.FilterRules)
	}
	view.IncrementVersion()

	if err := s.viewRepo.Save(ctx, view); err != nil {
		return nil, err
	}
	return ToSavedViewResponse(view), nil
}

// Delete removes one of the viewer's saved views
func (s *SavedViewService) Delete(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error {
	if _, err := s.loadOwn(ctx, viewer, id); err != nil {
		return err
	}
	return s.viewRepo.Delete(ctx, id)
}

// loadOwn fetches a view and hides other users' views entirely
func (s *SavedViewService) loadOwn(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*views.SavedView, error) {
	view, err := s.viewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !view.OwnedBy(viewer.UserID) {
		return nil, shared.ErrNotFound
	}
	return view, nil
}

func toFilterRules(viewID uuid.UUID, rules []FilterRuleDTO) []views.FilterRule {
	result := make([]views.FilterRule, len(rules))
	for i, rule := range rules {
		result[i] = views.FilterRule{
			BaseEntity:  shared.NewBaseEntity(),
			SavedViewID: viewID,
			RuleType:    rule.RuleType,
			Value:       rule.Value,
		}
	}
	return result
}
