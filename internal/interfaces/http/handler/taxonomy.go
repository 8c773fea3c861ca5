package handler

import (
	apptaxonomy "github.com/dms/backend/internal/application/taxonomy"
	"github.com/gin-gonic/gin"
)

// parseTaxonomyFilter reads the listing parameters shared by all taxonomy
// endpoints
func parseTaxonomyFilter(c *gin.Context) apptaxonomy.ListFilter {
	filter := apptaxonomy.ListFilter{
		Name:           c.Query("name__icontains"),
		NameStartsWith: c.Query("name__istartswith"),
	}
	filter.Page, filter.PageSize = parsePagination(c)
	filter.Ordering, filter.Reverse = splitOrdering(c.Query("ordering"))
	return filter
}

// TagHandler handles tag CRUD
type TagHandler struct {
	BaseHandler
	tags *apptaxonomy.TagService
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tags *apptaxonomy.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// List godoc
// @Summary      List tags
// @Tags         tags
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        name__icontains query string false "Name contains filter"
// @Param        name__istartswith query string false "Name prefix filter"
// @Param        ordering query string false "Ordering field, prefix with - for descending"
// @Success      200 {object} APIResponse[[]apptaxonomy.TagResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tags [get]
func (h *TagHandler) List(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter := parseTaxonomyFilter(c)
	tags, total, err := h.tags.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, tags, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Retrieve a tag
// @Tags         tags
// @Produce      json
// @Param        id path string true "Tag ID"
// @Success      200 {object} APIResponse[apptaxonomy.TagResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tags/{id} [get]
func (h *TagHandler) Get(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "tag")
	if !ok {
		return
	}

	tag, err := h.tags.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tag)
}

// Create godoc
// @Summary      Create a tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        request body apptaxonomy.CreateTagRequest true "Tag"
// @Success      201 {object} APIResponse[apptaxonomy.TagResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apptaxonomy.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tags.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tag)
}

// Update godoc
// @Summary      Update a tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        id path string true "Tag ID"
// @Param        request body apptaxonomy.UpdateTagRequest true "Fields to update"
// @Success      200 {object} APIResponse[apptaxonomy.TagResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tags/{id} [patch]
func (h *TagHandler) Update(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "tag")
	if !ok {
		return
	}

	var req apptaxonomy.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tags.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tag)
}

// Delete godoc
// @Summary      Delete a tag
// @Description  Removes the tag from all documents; the documents themselves are kept
// @Tags         tags
// @Param        id path string true "Tag ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "tag")
	if !ok {
		return
	}

	if err := h.tags.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all tag routes
func (h *TagHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tags := rg.Group("/tags")
	{
		tags.GET("", h.List)
		tags.POST("", h.Create)
		tags.GET("/:id", h.Get)
		tags.PATCH("/:id", h.Update)
		tags.DELETE("/:id", h.Delete)
	}
}

// CorrespondentHandler handles correspondent CRUD
type CorrespondentHandler struct {
	BaseHandler
	correspondents *apptaxonomy.CorrespondentService
}

// NewCorrespondentHandler creates a new correspondent handler
func NewCorrespondentHandler(correspondents *apptaxonomy.CorrespondentService) *CorrespondentHandler {
	return &CorrespondentHandler{correspondents: correspondents}
}

// List godoc
// @Summary      List correspondents
// @Tags         correspondents
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        name__icontains query string false "Name contains filter"
// @Param        name__istartswith query string false "Name prefix filter"
// @Param        ordering query string false "Ordering field, prefix with - for descending"
// @Success      200 {object} APIResponse[[]apptaxonomy.CorrespondentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /correspondents [get]
func (h *CorrespondentHandler) List(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter := parseTaxonomyFilter(c)
	correspondents, total, err := h.correspondents.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, correspondents, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Retrieve a correspondent
// @Tags         correspondents
// @Produce      json
// @Param        id path string true "Correspondent ID"
// @Success      200 {object} APIResponse[apptaxonomy.CorrespondentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /correspondents/{id} [get]
func (h *CorrespondentHandler) Get(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "correspondent")
	if !ok {
		return
	}

	correspondent, err := h.correspondents.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, correspondent)
}

// Create godoc
// @Summary      Create a correspondent
// @Tags         correspondents
// @Accept       json
// @Produce      json
// @Param        request body apptaxonomy.CreateCorrespondentRequest true "Correspondent"
// @Success      201 {object} APIResponse[apptaxonomy.CorrespondentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /correspondents [post]
func (h *CorrespondentHandler) Create(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apptaxonomy.CreateCorrespondentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	correspondent, err := h.correspondents.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, correspondent)
}

// Update godoc
// @Summary      Update a correspondent
// @Tags         correspondents
// @Accept       json
// @Produce      json
// @Param        id path string true "Correspondent ID"
// @Param        request body apptaxonomy.UpdateCorrespondentRequest true "Fields to update"
// @Success      200 {object} APIResponse[apptaxonomy.CorrespondentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /correspondents/{id} [patch]
func (h *CorrespondentHandler) Update(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "correspondent")
	if !ok {
		return
	}

	var req apptaxonomy.UpdateCorrespondentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	correspondent, err := h.correspondents.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, correspondent)
}

// Delete godoc
// @Summary      Delete a correspondent
// @Description  Unassigns the correspondent from all documents; the documents themselves are kept
// @Tags         correspondents
// @Param        id path string true "Correspondent ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /correspondents/{id} [delete]
func (h *CorrespondentHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "correspondent")
	if !ok {
		return
	}

	if err := h.correspondents.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all correspondent routes
func (h *CorrespondentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	correspondents := rg.Group("/correspondents")
	{
		correspondents.GET("", h.List)
		correspondents.POST("", h.Create)
		correspondents.GET("/:id", h.Get)
		correspondents.PATCH("/:id", h.Update)
		correspondents.DELETE("/:id", h.Delete)
	}
}

// DocumentTypeHandler handles document type CRUD
type DocumentTypeHandler struct {
	BaseHandler
	documentTypes *apptaxonomy.DocumentTypeService
}

// NewDocumentTypeHandler creates a new document type handler
func NewDocumentTypeHandler(documentTypes *apptaxonomy.DocumentTypeService) *DocumentTypeHandler {
	return &DocumentTypeHandler{documentTypes: documentTypes}
}

// List godoc
// @Summary      List document types
// @Tags         document_types
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        name__icontains query string false "Name contains filter"
// @Param        name__istartswith query string false "Name prefix filter"
// @Param        ordering query string false "Ordering field, prefix with - for descending"
// @Success      200 {object} APIResponse[[]apptaxonomy.DocumentTypeResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /document_types [get]
func (h *DocumentTypeHandler) List(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter := parseTaxonomyFilter(c)
	documentTypes, total, err := h.documentTypes.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, documentTypes, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Retrieve a document type
// @Tags         document_types
// @Produce      json
// @Param        id path string true "Document type ID"
// @Success      200 {object} APIResponse[apptaxonomy.DocumentTypeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /document_types/{id} [get]
func (h *DocumentTypeHandler) Get(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document type")
	if !ok {
		return
	}

	documentType, err := h.documentTypes.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, documentType)
}

// Create godoc
// @Summary      Create a document type
// @Tags         document_types
// @Accept       json
// @Produce      json
// @Param        request body apptaxonomy.CreateDocumentTypeRequest true "Document type"
// @Success      201 {object} APIResponse[apptaxonomy.DocumentTypeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /document_types [post]
func (h *DocumentTypeHandler) Create(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apptaxonomy.CreateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	documentType, err := h.documentTypes.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, documentType)
}

// Update godoc
// @Summary      Update a document type
// @Tags         document_types
// @Accept       json
// @Produce      json
// @Param        id path string true "Document type ID"
// @Param        request body apptaxonomy.UpdateDocumentTypeRequest true "Fields to update"
// @Success      200 {object} APIResponse[apptaxonomy.DocumentTypeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /document_types/{id} [patch]
func (h *DocumentTypeHandler) Update(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document type")
	if !ok {
		return
	}

	var req apptaxonomy.UpdateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	documentType, err := h.documentTypes.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, documentType)
}

// Delete godoc
// @Summary      Delete a document type
// @Description  Unassigns the type from all documents; the documents themselves are kept
// @Tags         document_types
// @Param        id path string true "Document type ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /document_types/{id} [delete]
func (h *DocumentTypeHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "document type")
	if !ok {
		return
	}

	if err := h.documentTypes.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all document type routes
func (h *DocumentTypeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documentTypes := rg.Group("/document_types")
	{
		documentTypes.GET("", h.List)
		documentTypes.POST("", h.Create)
		documentTypes.GET("/:id", h.Get)
		documentTypes.PATCH("/:id", h.Update)
		documentTypes.DELETE("/:id", h.Delete)
	}
}

// StoragePathHandler handles storage path CRUD
type StoragePathHandler struct {
	BaseHandler
	storagePaths *apptaxonomy.StoragePathService
}

// NewStoragePathHandler creates a new storage path handler
func NewStoragePathHandler(storagePaths *apptaxonomy.StoragePathService) *StoragePathHandler {
	return &StoragePathHandler{storagePaths: storagePaths}
}

// List godoc
// @Summary      List storage paths
// @Tags         storage_paths
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        name__icontains query string false "Name contains filter"
// @Param        name__istartswith query string false "Name prefix filter"
// @Param        ordering query string false "Ordering field, prefix with - for descending"
// @Success      200 {object} APIResponse[[]apptaxonomy.StoragePathResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /storage_paths [get]
func (h *StoragePathHandler) List(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter := parseTaxonomyFilter(c)
	storagePaths, total, err := h.storagePaths.List(c.Request.Context(), viewer, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, storagePaths, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Retrieve a storage path
// @Tags         storage_paths
// @Produce      json
// @Param        id path string true "Storage path ID"
// @Success      200 {object} APIResponse[apptaxonomy.StoragePathResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /storage_paths/{id} [get]
func (h *StoragePathHandler) Get(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "storage path")
	if !ok {
		return
	}

	storagePath, err := h.storagePaths.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, storagePath)
}

// Create godoc
// @Summary      Create a storage path
// @Tags         storage_paths
// @Accept       json
// @Produce      json
// @Param        request body apptaxonomy.CreateStoragePathRequest true "Storage path"
// @Success      201 {object} APIResponse[apptaxonomy.StoragePathResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /storage_paths [post]
func (h *StoragePathHandler) Create(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apptaxonomy.CreateStoragePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	storagePath, err := h.storagePaths.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, storagePath)
}

// Update godoc
// @Summary      Update a storage path
// @Tags         storage_paths
// @Accept       json
// @Produce      json
// @Param        id path string true "Storage path ID"
// @Param        request body apptaxonomy.UpdateStoragePathRequest true "Fields to update"
// @Success      200 {object} APIResponse[apptaxonomy.StoragePathResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /storage_paths/{id} [patch]
func (h *StoragePathHandler) Update(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "storage path")
	if !ok {
		return
	}

	var req apptaxonomy.UpdateStoragePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	storagePath, err := h.storagePaths.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, storagePath)
}

// Delete godoc
// @Summary      Delete a storage path
// @Description  Unassigns the path from all documents; the documents themselves are kept
// @Tags         storage_paths
// @Param        id path string true "Storage path ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /storage_paths/{id} [delete]
func (h *StoragePathHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "storage path")
	if !ok {
		return
	}

	if err := h.storagePaths.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all storage path routes
func (h *StoragePathHandler) RegisterRoutes(rg *gin.RouterGroup) {
	storagePaths := rg.Group("/storage_paths")
	{
		storagePaths.GET("", h.List)
		storagePaths.POST("", h.Create)
		storagePaths.GET("/:id", h.Get)
		storagePaths.PATCH("/:id", h.Update)
		storagePaths.DELETE("/:id", h.Delete)
	}
}
