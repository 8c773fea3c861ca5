package handler

import (
	"path/filepath"
	"strconv"

	appdocs "github.com/dms/backend/internal/application/documents"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadHandler accepts document uploads and enqueues their consumption
type UploadHandler struct {
	BaseHandler
	upload *appdocs.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(upload *appdocs.UploadService) *UploadHandler {
	return &UploadHandler{upload: upload}
}

// PostDocument godoc
// @Summary      Upload a document
// @Description  Accepts a multipart upload with optional metadata overrides and returns the consume task id
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document formData file true "Document file"
// @Param        title formData string false "Title override"
// @Param        created formData string false "Created date override"
// @Param        correspondent formData string false "Correspondent id"
// @Param        document_type formData string false "Document type id"
// @Param        storage_path formData string false "Storage path id"
// @Param        tags formData string false "Tag id, repeatable"
// @Param        archive_serial_number formData int false "Archive serial number"
// @Success      200 {object} APIResponse[TaskIDData]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/post_document [post]
func (h *UploadHandler) PostDocument(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		h.BadRequest(c, "Missing document file")
		return
	}

	req, err := h.parseUploadRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	// Strip any client-supplied directory components
	req.Filename = filepath.Base(fileHeader.Filename)

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable document file")
		return
	}
	defer file.Close()

	taskID, err := h.upload.Upload(c.Request.Context(), viewer, req, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, TaskIDData{TaskID: taskID.String()})
}

// parseUploadRequest reads the optional metadata override form fields
func (h *UploadHandler) parseUploadRequest(c *gin.Context) (appdocs.UploadRequest, error) {
	req := appdocs.UploadRequest{
		Title: c.PostForm("title"),
	}

	var err error
	if req.Created, err = parseDateQuery(c.PostForm("created")); err != nil {
		return req, errInvalidFilter("created")
	}
	if req.CorrespondentID, err = parseUUIDQuery(c.PostForm("correspondent")); err != nil {
		return req, errInvalidFilter("correspondent")
	}
	if req.DocumentTypeID, err = parseUUIDQuery(c.PostForm("document_type")); err != nil {
		return req, errInvalidFilter("document_type")
	}
	if req.StoragePathID, err = parseUUIDQuery(c.PostForm("storage_path")); err != nil {
		return req, errInvalidFilter("storage_path")
	}
	for _, raw := range c.PostFormArray("tags") {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			return req, errInvalidFilter("tags")
		}
		req.TagIDs = append(req.TagIDs, tagID)
	}
	if value := c.PostForm("archive_serial_number"); value != "" {
		asn, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return req, errInvalidFilter("archive_serial_number")
		}
		req.ArchiveSerialNumber = &asn
	}
	return req, nil
}

// RegisterRoutes registers the upload route
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/post_document", h.PostDocument)
}
