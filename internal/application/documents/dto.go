package documents

import (
	"encoding/json"
	"io"
	"time"
	"unicode/utf8"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/google/uuid"
)

// ListRequest carries the document listing parameters
type ListRequest struct {
	Page     int
	PageSize int
	Ordering string
	Reverse  bool

	Search          string
	TitleContains   string
	CorrespondentID *uuid.UUID
	DocumentTypeID  *uuid.UUID
	StoragePathID   *uuid.UUID
	TagsAll         []uuid.UUID
	TagsIn          []uuid.UUID
	IsTagged        *bool
	InboxOnly       bool
	ASN             *int64
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	AddedAfter      *time.Time
	AddedBefore     *time.Time

	// Fields selects a subset of response fields; empty means all
	Fields []string
	// TruncateContent trims content to its leading characters
	TruncateContent bool
}

// truncatedContentLength is how much content a truncated listing keeps
const truncatedContentLength = 500

// SearchHit decorates a listing entry produced by a search query
type SearchHit struct {
	Score          float64             `json:"score"`
	Rank           int                 `json:"rank"`
	Highlights     map[string][]string `json:"highlights"`
	NoteHighlights map[string][]string `json:"note_highlights"`
}

// DocumentResponse is the API shape of a document
type DocumentResponse struct {
	ID                  uuid.UUID   `json:"id"`
	Title               string      `json:"title"`
	Content             string      `json:"content"`
	CorrespondentID     *uuid.UUID  `json:"correspondent"`
	DocumentTypeID      *uuid.UUID  `json:"document_type"`
	StoragePathID       *uuid.UUID  `json:"storage_path"`
	Tags                []uuid.UUID `json:"tags"`
	ArchiveSerialNumber *int64      `json:"archive_serial_number"`
	Created             time.Time   `json:"created"`
	Modified            time.Time   `json:"modified"`
	Added               time.Time   `json:"added"`
	OriginalFileName    string      `json:"original_file_name"`
	ArchivedFileName    *string     `json:"archived_file_name"`
	MimeType            string      `json:"mime_type"`
	Language            string      `json:"language"`
	PageCount           *int        `json:"page_count"`
	NumNotes            int64       `json:"num_notes"`
	Owner               *uuid.UUID  `json:"owner"`
	SearchHit           *SearchHit  `json:"__search_hit__,omitempty"`
}

// ToDocumentResponse converts a document with its note count
func ToDocumentResponse(doc *documents.Document, numNotes int64) *DocumentResponse {
	resp := &DocumentResponse{
		ID:                  doc.ID,
		Title:               doc.Title,
		Content:             doc.Content,
		CorrespondentID:     doc.CorrespondentID,
		DocumentTypeID:      doc.DocumentTypeID,
		StoragePathID:       doc.StoragePathID,
		Tags:                doc.TagIDs,
		ArchiveSerialNumber: doc.ASN,
		Created:             doc.Created,
		Modified:            doc.Modified,
		Added:               doc.Added,
		OriginalFileName:    doc.OriginalFilename,
		MimeType:            doc.MimeType,
		Language:            doc.Language,
		PageCount:           doc.PageCount,
		NumNotes:            numNotes,
		Owner:               doc.OwnerID,
	}
	if resp.Tags == nil {
		resp.Tags = []uuid.UUID{}
	}
	if doc.HasArchiveVersion() {
		name := doc.ServedFilename(false)
		resp.ArchivedFileName = &name
	}
	return resp
}

// Truncate trims the content for list views, backing up to a rune
// boundary so multibyte characters are not cut in half.
func (r *DocumentResponse) Truncate() {
	if len(r.Content) <= truncatedContentLength {
		return
	}
	cut := truncatedContentLength
	for cut > 0 && !utf8.RuneStart(r.Content[cut]) {
		cut--
	}
	r.Content = r.Content[:cut]
}

// SelectFields reduces the response to the requested field names. Unknown
// names are ignored; an empty selection returns everything.
func (r *DocumentResponse) SelectFields(fields []string) map[string]interface{} {
	raw, _ := json.Marshal(r)
	var full map[string]interface{}
	_ = json.Unmarshal(raw, &full)
	if len(fields) == 0 {
		return full
	}

	selected := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		if value, ok := full[field]; ok {
			selected[field] = value
		}
	}
	return selected
}

// UpdateDocumentRequest is the payload for updating document metadata.
// Nil fields stay unchanged; explicit nulls clear assignments.
type UpdateDocumentRequest struct {
	Title               *string        `json:"title"`
	CorrespondentID     OptionalID     `json:"correspondent"`
	DocumentTypeID      OptionalID     `json:"document_type"`
	StoragePathID       OptionalID     `json:"storage_path"`
	Tags                *[]uuid.UUID   `json:"tags"`
	Created             *time.Time     `json:"created"`
	ArchiveSerialNumber OptionalSerial `json:"archive_serial_number"`
	Content             *string        `json:"content"`
}

// OptionalID distinguishes an absent field from an explicit null
type OptionalID struct {
	Present bool
	Value   *uuid.UUID
}

// UnmarshalJSON records presence alongside the value
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// OptionalSerial distinguishes an absent serial from an explicit null
type OptionalSerial struct {
	Present bool
	Value   *int64
}

// UnmarshalJSON records presence alongside the value
func (o *OptionalSerial) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var asn int64
	if err := json.Unmarshal(data, &asn); err != nil {
		return err
	}
	o.Value = &asn
	return nil
}

// MetadataResponse describes the stored file variants of a document
type MetadataResponse struct {
	OriginalChecksum  string  `json:"original_checksum"`
	OriginalSize      int64   `json:"original_size"`
	OriginalMimeType  string  `json:"original_mime_type"`
	OriginalFileName  string  `json:"original_filename"`
	HasArchiveVersion bool    `json:"has_archive_version"`
	ArchiveChecksum   *string `json:"archive_checksum"`
	ArchiveSize       *int64  `json:"archive_size"`
	ArchiveMimeType   *string `json:"archive_mime_type"`
	Language          string  `json:"lang"`
}

// SuggestionsResponse carries matching-rule and date suggestions
type SuggestionsResponse struct {
	Correspondents []uuid.UUID `json:"correspondents"`
	Tags           []uuid.UUID `json:"tags"`
	DocumentTypes  []uuid.UUID `json:"document_types"`
	StoragePaths   []uuid.UUID `json:"storage_paths"`
	Dates          []string    `json:"dates"`
}

// NoteResponse is the API shape of a document note
type NoteResponse struct {
	ID      uuid.UUID  `json:"id"`
	Note    string     `json:"note"`
	Created time.Time  `json:"created"`
	User    *uuid.UUID `json:"user"`
}

// ToNoteResponse converts a note
func ToNoteResponse(note *documents.Note) *NoteResponse {
	return &NoteResponse{
		ID:      note.ID,
		Note:    note.Content,
		Created: note.CreatedAt,
		User:    note.UserID,
	}
}

// CreateNoteRequest is the payload for adding a note
type CreateNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// CustomMetadataResponse is the API shape of a custom metadata entry
type CustomMetadataResponse struct {
	ID      uuid.UUID `json:"id"`
	Key     string    `json:"key"`
	Value   string    `json:"value"`
	Created time.Time `json:"created"`
}

// ToCustomMetadataResponse converts a metadata entry
func ToCustomMetadataResponse(entry *documents.CustomMetadata) *CustomMetadataResponse {
	return &CustomMetadataResponse{
		ID:      entry.ID,
		Key:     entry.Key,
		Value:   entry.Value,
		Created: entry.CreatedAt,
	}
}

// CreateCustomMetadataRequest is the payload for adding a metadata entry
type CreateCustomMetadataRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

// FileDownload is a stored file variant prepared for serving
type FileDownload struct {
	Reader      io.ReadCloser
	Size        int64
	ContentType string
	Filename    string
}

// SelectionDataRequest asks for taxonomy counts over selected documents
type SelectionDataRequest struct {
	Documents []uuid.UUID `json:"documents" binding:"required"`
}

// SelectionCount pairs a taxonomy object with its count in the selection
type SelectionCount struct {
	ID            uuid.UUID `json:"id"`
	DocumentCount int64     `json:"document_count"`
}

// SelectionDataResponse mirrors the per-taxonomy selection counts
type SelectionDataResponse struct {
	SelectedCorrespondents []SelectionCount `json:"selected_correspondents"`
	SelectedTags           []SelectionCount `json:"selected_tags"`
	SelectedDocumentTypes  []SelectionCount `json:"selected_document_types"`
	SelectedStoragePaths   []SelectionCount `json:"selected_storage_paths"`
}

// BulkEditRequest applies one method to a set of documents
type BulkEditRequest struct {
	Documents  []uuid.UUID            `json:"documents" binding:"required"`
	Method     string                 `json:"method" binding:"required"`
	Parameters map[string]interface{} `json:"parameters"`
}

// BulkDownloadRequest builds a zip of the selected documents
type BulkDownloadRequest struct {
	Documents        []uuid.UUID `json:"documents" binding:"required"`
	Content          string      `json:"content"`
	Compression      string      `json:"compression"`
	FollowFormatting bool        `json:"follow_formatting"`
}

// UploadRequest carries the multipart upload metadata
type UploadRequest struct {
	Filename            string
	Title               string
	Created             *time.Time
	CorrespondentID     *uuid.UUID
	DocumentTypeID      *uuid.UUID
	StoragePathID       *uuid.UUID
	TagIDs              []uuid.UUID
	ArchiveSerialNumber *int64
}
