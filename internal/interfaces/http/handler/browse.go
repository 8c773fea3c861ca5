package handler

import (
	appdocs "github.com/dms/backend/internal/application/documents"
	"github.com/gin-gonic/gin"
)

// BrowseHandler walks the storage path hierarchy as a folder tree
type BrowseHandler struct {
	BaseHandler
	browse *appdocs.BrowseService
}

// NewBrowseHandler creates a new browse handler
func NewBrowseHandler(browse *appdocs.BrowseService) *BrowseHandler {
	return &BrowseHandler{browse: browse}
}

// FilesAndFolders godoc
// @Summary      Browse documents by storage path
// @Description  Lists child storage paths as folders and assigned documents as files; without a parent, top level paths and unassigned documents
// @Tags         browse
// @Produce      json
// @Param        parent_storage_path_id query string false "Storage path to browse into"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[appdocs.BrowseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /files_and_folders [get]
func (h *BrowseHandler) FilesAndFolders(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	parentID, err := parseUUIDQuery(c.Query("parent_storage_path_id"))
	if err != nil {
		h.BadRequest(c, "Invalid parent_storage_path_id")
		return
	}

	req := appdocs.BrowseRequest{ParentStoragePathID: parentID}
	req.Page, req.PageSize = parsePagination(c)

	listing, err := h.browse.Browse(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// RegisterRoutes registers the browse route
func (h *BrowseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files_and_folders", h.FilesAndFolders)
}
