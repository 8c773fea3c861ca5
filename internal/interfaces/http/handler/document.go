package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	appdocs "github.com/dms/backend/internal/application/documents"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// thumbnailCacheControl keeps thumbnails in the browser cache; they only
// change when the document is re-consumed under a new id.
const thumbnailCacheControl = "private, max-age=31536000"

// DocumentHandler handles document CRUD, file serving and per-document
// sub-resources (notes, custom metadata, suggestions).
type DocumentHandler struct {
	BaseHandler
	documents *appdocs.DocumentService
	search    *appdocs.SearchService
	notes     *appdocs.NoteService
	metadata  *appdocs.CustomMetadataService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	documents *appdocs.DocumentService,
	search *appdocs.SearchService,
	notes *appdocs.NoteService,
	metadata *appdocs.CustomMetadataService,
) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		search:    search,
		notes:     notes,
		metadata:  metadata,
	}
}

// List godoc
// @Summary      List documents
// @Description  Paginated document listing with filters; becomes a full text search when query or more_like_id is present
// @Tags         documents
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        ordering query string false "Ordering field, prefix with - for descending"
// @Param        query query string false "Full text query"
// @Param        more_like_id query string false "Find documents similar to this one"
// @Param        fields query string false "Comma separated response field selection"
// @Param        truncate_content query bool false "Trim content to its leading characters"
// @Success      200 {object} APIResponse[[]appdocs.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, pageSize := parsePagination(c)
	truncate := c.Query("truncate_content") == "true"
	fields := splitFields(c.Query("fields"))

	// A query or similarity parameter turns the listing into a search
	query := c.Query("query")
	moreLikeID, err := parseUUIDQuery(c.Query("more_like_id"))
	if err != nil {
		h.BadRequest(c, "Invalid more_like_id")
		return
	}
	if query != "" || moreLikeID != nil {
		results, total, err := h.search.Search(c.Request.Context(), viewer, appdocs.SearchRequest{
			Query:           query,
			MoreLikeID:      moreLikeID,
			Page:            page,
			PageSize:        pageSize,
			TruncateContent: truncate,
		})
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, selectDocumentFields(results, fields), total, page, pageSize)
		return
	}

	req, err := h.parseListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Page = page
	req.PageSize = pageSize
	req.TruncateContent = truncate
	req.Fields = fields

	results, total, err := h.documents.List(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, selectDocumentFields(results, fields), total, page, pageSize)
}

// Get godoc
// @Summary      Retrieve a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse[appdocs.DocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	doc, err := h.documents.Get(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Update godoc
// @Summary      Update document metadata
// @Description  Updates title, assignments, tags, dates and content; absent fields stay unchanged, explicit nulls clear assignments
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body appdocs.UpdateDocumentRequest true "Fields to update"
// @Success      200 {object} APIResponse[appdocs.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [patch]
func (h *DocumentHandler) Update(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	var req appdocs.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	doc, err := h.documents.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete godoc
// @Summary      Delete a document
// @Description  Deletes the document, its stored files and its search index entry
// @Tags         documents
// @Param        id path string true "Document ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	if err := h.documents.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Download godoc
// @Summary      Download a document file
// @Description  Serves the archived rendition when present, or the original when original=true or no archive exists
// @Tags         documents
// @Produce      octet-stream
// @Param        id path string true "Document ID"
// @Param        original query bool false "Serve the original file"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	h.serveFile(c, "attachment")
}

// Preview godoc
// @Summary      Preview a document file inline
// @Tags         documents
// @Produce      octet-stream
// @Param        id path string true "Document ID"
// @Param        original query bool false "Serve the original file"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/preview [get]
func (h *DocumentHandler) Preview(c *gin.Context) {
	h.serveFile(c, "inline")
}

// serveFile streams a stored rendition with the requested disposition
func (h *DocumentHandler) serveFile(c *gin.Context, dispositionType string) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}
	original := c.Query("original") == "true"

	download, err := h.documents.Download(c.Request.Context(), viewer, id, original)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer download.Reader.Close()

	contentType := download.ContentType
	// Browsers would otherwise offer csv previews as downloads
	if dispositionType == "inline" && contentType == "text/csv" {
		contentType = "text/plain"
	}

	c.DataFromReader(http.StatusOK, download.Size, contentType, download.Reader, map[string]string{
		"Content-Disposition": contentDisposition(dispositionType, download.Filename),
	})
}

// Thumbnail godoc
// @Summary      Serve the document thumbnail
// @Tags         documents
// @Produce      image/webp
// @Param        id path string true "Document ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/thumb [get]
func (h *DocumentHandler) Thumbnail(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	download, err := h.documents.Thumbnail(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer download.Reader.Close()

	c.Header("Cache-Control", thumbnailCacheControl)
	c.DataFromReader(http.StatusOK, download.Size, download.ContentType, download.Reader, nil)
}

// Metadata godoc
// @Summary      Describe the stored renditions of a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse[appdocs.MetadataResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/metadata [get]
func (h *DocumentHandler) Metadata(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	meta, err := h.documents.Metadata(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, meta)
}

// Suggestions godoc
// @Summary      Suggest taxonomy assignments and dates for a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse[appdocs.SuggestionsResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/suggestions [get]
func (h *DocumentHandler) Suggestions(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	suggestions, err := h.documents.Suggestions(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suggestions)
}

// ListNotes godoc
// @Summary      List notes of a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse[[]appdocs.NoteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/notes [get]
func (h *DocumentHandler) ListNotes(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	notes, err := h.notes.List(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notes)
}

// CreateNote godoc
// @Summary      Add a note to a document
// @Description  Creates the note, re-indexes the document and returns the refreshed note list
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body appdocs.CreateNoteRequest true "Note body"
// @Success      200 {object} APIResponse[[]appdocs.NoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/notes [post]
func (h *DocumentHandler) CreateNote(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	var req appdocs.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	notes, err := h.notes.Create(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notes)
}

// DeleteNote godoc
// @Summary      Delete a note from a document
// @Description  Deletes the note, re-indexes the document and returns the refreshed note list
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        id query string true "Note ID"
// @Success      200 {object} APIResponse[[]appdocs.NoteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/notes [delete]
func (h *DocumentHandler) DeleteNote(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	noteID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		h.BadRequest(c, "Invalid note id")
		return
	}

	notes, err := h.notes.Delete(c.Request.Context(), viewer, id, noteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notes)
}

// ListCustomMetadata godoc
// @Summary      List custom metadata of a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID"
// @Success      200 {object} APIResponse[[]appdocs.CustomMetadataResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/index_field_metadata [get]
func (h *DocumentHandler) ListCustomMetadata(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	entries, err := h.metadata.List(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// CreateCustomMetadata godoc
// @Summary      Add a custom metadata record to a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID"
// @Param        request body appdocs.CreateCustomMetadataRequest true "Metadata entry"
// @Success      201 {object} APIResponse[appdocs.CustomMetadataResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/index_field_metadata [post]
func (h *DocumentHandler) CreateCustomMetadata(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document")
	if !ok {
		return
	}

	var req appdocs.CreateCustomMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.metadata.Create(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// parseListRequest maps the listing query parameters onto the service request
func (h *DocumentHandler) parseListRequest(c *gin.Context) (appdocs.ListRequest, error) {
	req := appdocs.ListRequest{
		Search:        c.Query("search"),
		TitleContains: c.Query("title_content"),
	}

	req.Ordering, req.Reverse = splitOrdering(c.Query("ordering"))

	var err error
	if req.CorrespondentID, err = parseUUIDQuery(c.Query("correspondent__id")); err != nil {
		return req, errInvalidFilter("correspondent__id")
	}
	if req.DocumentTypeID, err = parseUUIDQuery(c.Query("document_type__id")); err != nil {
		return req, errInvalidFilter("document_type__id")
	}
	if req.StoragePathID, err = parseUUIDQuery(c.Query("storage_path__id")); err != nil {
		return req, errInvalidFilter("storage_path__id")
	}
	if req.TagsAll, err = parseUUIDList(c.Query("tags__id__all")); err != nil {
		return req, errInvalidFilter("tags__id__all")
	}
	if req.TagsIn, err = parseUUIDList(c.Query("tags__id__in")); err != nil {
		return req, errInvalidFilter("tags__id__in")
	}
	if value := c.Query("is_tagged"); value != "" {
		tagged := value == "true" || value == "1"
		req.IsTagged = &tagged
	}
	if value := c.Query("archive_serial_number"); value != "" {
		asn, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return req, errInvalidFilter("archive_serial_number")
		}
		req.ASN = &asn
	}
	if req.CreatedAfter, err = parseDateQuery(c.Query("created__date__gt")); err != nil {
		return req, errInvalidFilter("created__date__gt")
	}
	if req.CreatedBefore, err = parseDateQuery(c.Query("created__date__lt")); err != nil {
		return req, errInvalidFilter("created__date__lt")
	}
	if req.AddedAfter, err = parseDateQuery(c.Query("added__date__gt")); err != nil {
		return req, errInvalidFilter("added__date__gt")
	}
	if req.AddedBefore, err = parseDateQuery(c.Query("added__date__lt")); err != nil {
		return req, errInvalidFilter("added__date__lt")
	}
	return req, nil
}

// selectDocumentFields applies the fields= selection to a result page
func selectDocumentFields(results []*appdocs.DocumentResponse, fields []string) any {
	if len(fields) == 0 {
		return results
	}
	selected := make([]map[string]interface{}, len(results))
	for i, result := range results {
		selected[i] = result.SelectFields(fields)
	}
	return selected
}

// splitFields parses the comma separated fields selection
func splitFields(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return fields
}

// parsePagination reads page and page_size with the listing defaults
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "25"))
	if pageSize < 1 {
		pageSize = 25
	}
	return page, pageSize
}

// parseDateQuery parses a yyyy-mm-dd or RFC 3339 date filter value
func parseDateQuery(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RegisterRoutes registers all document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.GET("", h.List)
		docs.GET("/:id", h.Get)
		docs.PATCH("/:id", h.Update)
		docs.DELETE("/:id", h.Delete)
		docs.GET("/:id/download", h.Download)
		docs.GET("/:id/preview", h.Preview)
		docs.GET("/:id/thumb", h.Thumbnail)
		docs.GET("/:id/metadata", h.Metadata)
		docs.GET("/:id/suggestions", h.Suggestions)
		docs.GET("/:id/notes", h.ListNotes)
		docs.POST("/:id/notes", h.CreateNote)
		docs.DELETE("/:id/notes", h.DeleteNote)
		docs.GET("/:id/index_field_metadata", h.ListCustomMetadata)
		docs.POST("/:id/index_field_metadata", h.CreateCustomMetadata)
	}
}
