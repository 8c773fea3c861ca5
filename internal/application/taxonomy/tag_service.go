package taxonomy

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// TagService handles tag operations
type TagService struct {
	tagRepo taxonomy.TagRepository
}

// NewTagService creates a new TagService
func NewTagService(tagRepo taxonomy.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// Create creates a tag owned by the requesting user
func (s *TagService) Create(ctx context.Context, viewer shared.Viewer, req CreateTagRequest) (*TagResponse, error) {
	if _, err := s.tagRepo.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Tag with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	tag, err := taxonomy.NewTag(req.Name)
	if err != nil {
		return nil, err
	}
	tag.SetOwner(viewer.UserID)

	if req.Color != "" {
		if err := tag.SetColor(req.Color); err != nil {
			return nil, err
		}
	}
	tag.SetInbox(req.IsInboxTag)
	if err := applyMatchingFields(&tag.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.tagRepo.Save(ctx, tag); err != nil {
		return nil, err
	}
	return ToTagResponse(tag, taxonomy.UsageCounts{}), nil
}

// GetByID retrieves a tag visible to the viewer
func (s *TagService) GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*TagResponse, error) {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tag.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	counts, err := s.usageFor(ctx, viewer, tag.ID)
	if err != nil {
		return nil, err
	}
	return ToTagResponse(tag, counts), nil
}

// List returns the viewer's visible tags with document counts
func (s *TagService) List(ctx context.Context, viewer shared.Viewer, filter ListFilter) ([]*TagResponse, int64, error) {
	tags, counts, total, err := s.tagRepo.FindAccessible(ctx, viewer, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = ToTagResponse(tag, counts[tag.ID])
	}
	return responses, total, nil
}

// Update modifies a tag the viewer may edit
func (s *TagService) Update(ctx context.Context, viewer shared.Viewer, id uuid.UUID, req UpdateTagRequest) (*TagResponse, error) {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tag.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	if !tag.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	if req.Name != nil && *req.Name != tag.Name {
		if _, err := s.tagRepo.FindByName(ctx, *req.Name); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Tag with this name already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if err := tag.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Color != nil {
		if err := tag.SetColor(*req.Color); err != nil {
			return nil, err
		}
	}
	if req.IsInboxTag != nil {
		tag.SetInbox(*req.IsInboxTag)
	}
	if err := applyMatchingFields(&tag.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.tagRepo.Save(ctx, tag); err != nil {
		return nil, err
	}
	counts, err := s.usageFor(ctx, viewer, tag.ID)
	if err != nil {
		return nil, err
	}
	return ToTagResponse(tag, counts), nil
}

// Delete removes a tag. Documents carrying it merely lose the tag.
func (s *TagService) Delete(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !tag.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrNotFound
	}
	if !tag.EditableBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrForbidden
	}
	return s.tagRepo.Delete(ctx, id)
}

func (s *TagService) usageFor(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (taxonomy.UsageCounts, error) {
	_, counts, _, err := s.tagRepo.FindAccessible(ctx, viewer, shared.Filter{
		Filters: map[string]interface{}{"id": id},
	})
	if err != nil {
		return taxonomy.UsageCounts{}, err
	}
	return counts[id], nil
}

// toDomainFilter maps the API listing filter onto the repository filter
func toDomainFilter(filter ListFilter) shared.Filter {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Name,
		OrderBy:  filter.Ordering,
		Filters:  map[string]interface{}{},
	}
	if filter.NameStartsWith != "" {
		domainFilter.Filters["name_startswith"] = filter.NameStartsWith
	}
	if filter.Reverse {
		domainFilter.OrderDir = "desc"
	} else {
		domainFilter.OrderDir = "asc"
	}
	return domainFilter
}

// applyMatchingFields validates and applies a rule update. Absent fields
// keep their current values.
func applyMatchingFields(rule *taxonomy.MatchingRule, fields MatchingFields) error {
	if fields.Match == "" && fields.MatchingAlgorithm == "" && fields.IsInsensitive == nil {
		return nil
	}

	match := rule.Match
	if fields.Match != "" {
		match = fields.Match
	}
	algorithm := rule.MatchingAlgorithm
	if fields.MatchingAlgorithm != "" {
		algorithm = taxonomy.MatchingAlgorithm(fields.MatchingAlgorithm)
	}
	insensitive := rule.IsInsensitive
	if fields.IsInsensitive != nil {
		insensitive = *fields.IsInsensitive
	}
	return rule.SetRule(match, algorithm, insensitive)
}
