package handler

import (
	"net/http"

	appdocs "github.com/dms/backend/internal/application/documents"
	"github.com/gin-gonic/gin"
)

// bulkDownloadFilename names the zip served by bulk download
const bulkDownloadFilename = "documents.zip"

// BulkHandler handles operations over a selection of documents
type BulkHandler struct {
	BaseHandler
	bulk *appdocs.BulkService
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulk *appdocs.BulkService) *BulkHandler {
	return &BulkHandler{bulk: bulk}
}

// BulkEdit godoc
// @Summary      Apply an edit to a selection of documents
// @Description  Supported methods: set_correspondent, set_document_type, set_storage_path, add_tag, remove_tag, modify_tags, delete
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body appdocs.BulkEditRequest true "Selection, method and parameters"
// @Success      200 {object} APIResponse[ResultData]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/bulk_edit [post]
func (h *BulkHandler) BulkEdit(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appdocs.BulkEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if _, err := h.bulk.BulkEdit(c.Request.Context(), viewer, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ResultData{Result: "OK"})
}

// BulkDownload godoc
// @Summary      Download a selection of documents as a zip archive
// @Description  content selects originals, archive renditions or both; compression is none or deflate
// @Tags         documents
// @Accept       json
// @Produce      application/zip
// @Param        request body appdocs.BulkDownloadRequest true "Selection and archive options"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/bulk_download [post]
func (h *BulkHandler) BulkDownload(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appdocs.BulkDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", contentDisposition("attachment", bulkDownloadFilename))
	c.Status(http.StatusOK)

	if err := h.bulk.BulkDownload(c.Request.Context(), viewer, req, c.Writer); err != nil {
		// Headers are already out once streaming has begun; all request
		// validation happens before the first zip entry is written.
		h.HandleError(c, err)
		return
	}
}

// SelectionData godoc
// @Summary      Count taxonomy assignments over a selection of documents
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body appdocs.SelectionDataRequest true "Selected document ids"
// @Success      200 {object} APIResponse[appdocs.SelectionDataResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/selection_data [post]
func (h *BulkHandler) SelectionData(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appdocs.SelectionDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	data, err := h.bulk.SelectionData(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// RegisterRoutes registers all bulk operation routes
func (h *BulkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("/bulk_edit", h.BulkEdit)
		docs.POST("/bulk_download", h.BulkDownload)
		docs.POST("/selection_data", h.SelectionData)
	}
}
