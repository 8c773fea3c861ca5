package documents

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/search"
	"github.com/google/uuid"
)

// autocompleteDefaultLimit bounds term suggestions when no limit is given
const autocompleteDefaultLimit = 10

// SearchRequest carries a full text query or a similarity lookup
type SearchRequest struct {
	Query      string
	MoreLikeID *uuid.UUID
	Page       int
	PageSize   int
	// TruncateContent trims content to its leading characters
	TruncateContent bool
}

// SearchService runs full text queries against the document index and
// hydrates hits from the database
type SearchService struct {
	index     search.DocumentIndex
	documents documents.DocumentRepository
	notes     documents.NoteRepository
}

// NewSearchService creates a new SearchService
func NewSearchService(index search.DocumentIndex, docs documents.DocumentRepository, notes documents.NoteRepository) *SearchService {
	return &SearchService{index: index, documents: docs, notes: notes}
}

// Search runs the query and returns ranked documents decorated with their
// search hit. Index entries whose document has disappeared are skipped.
func (s *SearchService) Search(ctx context.Context, viewer shared.Viewer, req SearchRequest) ([]*DocumentResponse, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 25
	}

	var result *search.Result
	var err error
	if req.MoreLikeID != nil {
		source, loadErr := s.documents.FindByID(ctx, *req.MoreLikeID)
		if loadErr != nil {
			return nil, 0, loadErr
		}
		if !source.AccessibleBy(viewer.UserID, viewer.Superuser) {
			return nil, 0, shared.ErrNotFound
		}
		result, err = s.index.MoreLikeThis(ctx, source.ID, source.Content, viewer, page, pageSize)
	} else {
		if strings.TrimSpace(req.Query) == "" {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Search query is required")
		}
		result, err = s.index.Search(ctx, req.Query, viewer, page, pageSize)
	}
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.ID
	}
	docs, err := s.documents.FindByIDs(ctx, viewer, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]*documents.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	responses := make([]*DocumentResponse, 0, len(result.Hits))
	for i, hit := range result.Hits {
		doc, ok := byID[hit.ID]
		if !ok {
			continue
		}
		numNotes, err := s.notes.CountByDocument(ctx, doc.ID)
		if err != nil {
			return nil, 0, err
		}
		resp := ToDocumentResponse(doc, numNotes)
		resp.SearchHit = &SearchHit{
			Score:          hit.Score,
			Rank:           (page-1)*pageSize + i,
			Highlights:     contentHighlights(hit.Highlights),
			NoteHighlights: noteHighlights(hit.Highlights),
		}
		if req.TruncateContent {
			resp.Truncate()
		}
		responses = append(responses, resp)
	}
	return responses, int64(result.Total), nil
}

// Autocomplete suggests index terms completing the given prefix
func (s *SearchService) Autocomplete(ctx context.Context, term string, limit int) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Term is required")
	}
	if limit < 1 {
		limit = autocompleteDefaultLimit
	}
	return s.index.Autocomplete(ctx, term, limit)
}

func contentHighlights(fragments map[string][]string) map[string][]string {
	result := map[string][]string{}
	for field, parts := range fragments {
		if field == "notes" {
			continue
		}
		result[field] = parts
	}
	return result
}

func noteHighlights(fragments map[string][]string) map[string][]string {
	result := map[string][]string{}
	if parts, ok := fragments["notes"]; ok {
		result["notes"] = parts
	}
	return result
}
