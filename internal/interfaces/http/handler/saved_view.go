package handler

import (
	appviews "github.com/dms/backend/internal/application/views"
	"github.com/gin-gonic/gin"
)

// SavedViewHandler handles saved view CRUD, always scoped to the owner
type SavedViewHandler struct {
	BaseHandler
	views *appviews.SavedViewService
}

// NewSavedViewHandler creates a new saved view handler
func NewSavedViewHandler(views *appviews.SavedViewService) *SavedViewHandler {
	return &SavedViewHandler{views: views}
}

// List godoc
// @Summary      List the requesting user's saved views
// @Tags         saved_views
// @Produce      json
// @Success      200 {object} APIResponse[[]appviews.SavedViewResponse]
// @Security     BearerAuth
// @Router       /saved_views [get]
func (h *SavedViewHandler) List(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	views, err := h.views.List(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// Get godoc
// @Summary      Retrieve a saved view
// @Tags         saved_views
// @Produce      json
// @Param        id path string true "Saved view ID"
// @Success      200 {object} APIResponse[appviews.SavedViewResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /saved_views/{id} [get]
func (h *SavedViewHandler) Get(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "saved view")
	if !ok {
		return
	}

	view, err := h.views.GetByID(c.Request.Context(), viewer, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Create godoc
// @Summary      Create a saved view
// @Tags         saved_views
// @Accept       json
// @Produce      json
// @Param        request body appviews.CreateSavedViewRequest true "Saved view"
// @Success      201 {object} APIResponse[appviews.SavedViewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /saved_views [post]
func (h *SavedViewHandler) Create(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appviews.CreateSavedViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.views.Create(c.Request.Context(), viewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Update godoc
// @Summary      Update a saved view
// @Tags         saved_views
// @Accept       json
// @Produce      json
// @Param        id path string true "Saved view ID"
// @Param        request body appviews.UpdateSavedViewRequest true "Fields to update"
// @Success      200 {object} APIResponse[appviews.SavedViewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /saved_views/{id} [patch]
func (h *SavedViewHandler) Update(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "saved view")
	if !ok {
		return
	}

	var req appviews.UpdateSavedViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.views.Update(c.Request.Context(), viewer, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Delete godoc
// @Summary      Delete a saved view
// @Tags         saved_views
// @Param        id path string true "Saved view ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /saved_views/{id} [delete]
func (h *SavedViewHandler) Delete(c *gin.Context) {
	viewer, id, ok := h.viewerAndIDParam(c, "saved view")
	if !ok {
		return
	}

	if err := h.views.Delete(c.Request.Context(), viewer, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all saved view routes
func (h *SavedViewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	views := rg.Group("/saved_views")
	{
		views.GET("", h.List)
		views.POST("", h.Create)
		views.GET("/:id", h.Get)
		views.PATCH("/:id", h.Update)
		views.DELETE("/:id", h.Delete)
	}
}
