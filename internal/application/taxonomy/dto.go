package taxonomy

import (
	"time"

	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// ListFilter narrows and orders a taxonomy listing
type ListFilter struct {
	Page           int
	PageSize       int
	Name           string
	NameStartsWith string
	Ordering       string
	Reverse        bool
}

// MatchingFields are the rule fields shared by all taxonomy payloads
type MatchingFields struct {
	Match             string `json:"match"`
	MatchingAlgorithm string `json:"matching_algorithm"`
	IsInsensitive     *bool  `json:"is_insensitive"`
}

// CreateTagRequest is the payload for creating a tag
type CreateTagRequest struct {
	Name       string `json:"name" binding:"required"`
	Color      string `json:"color"`
	IsInboxTag bool   `json:"is_inbox_tag"`
	MatchingFields
}

// UpdateTagRequest is the payload for updating a tag. Nil fields are
// left unchanged.
type UpdateTagRequest struct {
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	IsInboxTag *bool   `json:"is_inbox_tag"`
	MatchingFields
}

// TagResponse is the API shape of a tag
type TagResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Color             string     `json:"color"`
	TextColor         string     `json:"text_color"`
	IsInboxTag        bool       `json:"is_inbox_tag"`
	Match             string     `json:"match"`
	MatchingAlgorithm string     `json:"matching_algorithm"`
	IsInsensitive     bool       `json:"is_insensitive"`
	DocumentCount     int64      `json:"document_count"`
	Owner             *uuid.UUID `json:"owner"`
}

// ToTagResponse converts a tag with its usage annotation
func ToTagResponse(tag *taxonomy.Tag, counts taxonomy.UsageCounts) *TagResponse {
	return &TagResponse{
		ID:                tag.ID,
		Name:              tag.Name,
		Slug:              tag.Slug,
		Color:             tag.Color,
		TextColor:         tag.TextColor(),
		IsInboxTag:        tag.IsInboxTag,
		Match:             tag.Match,
		MatchingAlgorithm: string(tag.MatchingAlgorithm),
		IsInsensitive:     tag.IsInsensitive,
		DocumentCount:     counts.DocumentCount,
		Owner:             tag.OwnerID,
	}
}

// CreateCorrespondentRequest is the payload for creating a correspondent
type CreateCorrespondentRequest struct {
	Name string `json:"name" binding:"required"`
	MatchingFields
}

// UpdateCorrespondentRequest is the payload for updating a correspondent
type UpdateCorrespondentRequest struct {
	Name *string `json:"name"`
	MatchingFields
}

// CorrespondentResponse is the API shape of a correspondent
type CorrespondentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	Match              string     `json:"match"`
	MatchingAlgorithm  string     `json:"matching_algorithm"`
	IsInsensitive      bool       `json:"is_insensitive"`
	DocumentCount      int64      `json:"document_count"`
	LastCorrespondence *time.Time `json:"last_correspondence"`
	Owner              *uuid.UUID `json:"owner"`
}

// ToCorrespondentResponse converts a correspondent with its annotations
func ToCorrespondentResponse(c *taxonomy.Correspondent, counts taxonomy.UsageCounts) *CorrespondentResponse {
	return &CorrespondentResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Slug:               c.Slug,
		Match:              c.Match,
		MatchingAlgorithm:  string(c.MatchingAlgorithm),
		IsInsensitive:      c.IsInsensitive,
		DocumentCount:      counts.DocumentCount,
		LastCorrespondence: counts.LastCorrespondence,
		Owner:              c.OwnerID,
	}
}

// CreateDocumentTypeRequest is the payload for creating a document type
type CreateDocumentTypeRequest struct {
	Name string `json:"name" binding:"required"`
	MatchingFields
}

// UpdateDocumentTypeRequest is the payload for updating a document type
type UpdateDocumentTypeRequest struct {
	Name *string `json:"name"`
	MatchingFields
}

// DocumentTypeResponse is the API shape of a document type
type DocumentTypeResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Match             string     `json:"match"`
	MatchingAlgorithm string     `json:"matching_algorithm"`
	IsInsensitive     bool       `json:"is_insensitive"`
	DocumentCount     int64      `json:"document_count"`
	Owner             *uuid.UUID `json:"owner"`
}

// ToDocumentTypeResponse converts a document type with its annotation
func ToDocumentTypeResponse(d *taxonomy.DocumentType, counts taxonomy.UsageCounts) *DocumentTypeResponse {
	return &DocumentTypeResponse{
		ID:                d.ID,
		Name:              d.Name,
		Slug:              d.Slug,
		Match:             d.Match,
		MatchingAlgorithm: string(d.MatchingAlgorithm),
		IsInsensitive:     d.IsInsensitive,
		DocumentCount:     counts.DocumentCount,
		Owner:             d.OwnerID,
	}
}

// CreateStoragePathRequest is the payload for creating a storage path
type CreateStoragePathRequest struct {
	Name string `json:"name" binding:"required"`
	Path string `json:"path" binding:"required"`
	MatchingFields
}

// UpdateStoragePathRequest is the payload for updating a storage path
type UpdateStoragePathRequest struct {
	Name *string `json:"name"`
	Path *string `json:"path"`
	MatchingFields
}

// StoragePathResponse is the API shape of a storage path
type StoragePathResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Path              string     `json:"path"`
	Match             string     `json:"match"`
	MatchingAlgorithm string     `json:"matching_algorithm"`
	IsInsensitive     bool       `json:"is_insensitive"`
	DocumentCount     int64      `json:"document_count"`
	Owner             *uuid.UUID `json:"owner"`
}

// ToStoragePathResponse converts a storage path with its annotation
func ToStoragePathResponse(p *taxonomy.StoragePath, counts taxonomy.UsageCounts) *StoragePathResponse {
	return &StoragePathResponse{
		ID:                p.ID,
		Name:              p.Name,
		Slug:              p.Slug,
		Path:              p.Path,
		Match:             p.Match,
		MatchingAlgorithm: string(p.MatchingAlgorithm),
		IsInsensitive:     p.IsInsensitive,
		DocumentCount:     counts.DocumentCount,
		Owner:             p.OwnerID,
	}
}
