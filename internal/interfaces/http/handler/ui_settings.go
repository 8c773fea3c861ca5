package handler

import (
	appviews "github.com/dms/backend/internal/application/views"
	"github.com/gin-gonic/gin"
)

// UISettingsHandler serves the per-user frontend settings blob
type UISettingsHandler struct {
	BaseHandler
	settings *appviews.UISettingsService
}

// NewUISettingsHandler creates a new UI settings handler
func NewUISettingsHandler(settings *appviews.UISettingsService) *UISettingsHandler {
	return &UISettingsHandler{settings: settings}
}

// Get godoc
// @Summary      Get UI settings
// @Description  Returns the requesting user's settings blob together with account info and permissions
// @Tags         ui_settings
// @Produce      json
// @Success      200 {object} APIResponse[appviews.UISettingsResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ui_settings [get]
func (h *UISettingsHandler) Get(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// Replace godoc
// @Summary      Replace UI settings
// @Description  Replaces the requesting user's settings blob
// @Tags         ui_settings
// @Accept       json
// @Produce      json
// @Param        request body appviews.ReplaceUISettingsRequest true "Settings blob"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ui_settings [post]
func (h *UISettingsHandler) Replace(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appviews.ReplaceUISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.settings.Replace(c.Request.Context(), viewer, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ResultData{Result: "OK"})
}

// RegisterRoutes registers the UI settings routes
func (h *UISettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ui_settings", h.Get)
	rg.POST("/ui_settings", h.Replace)
}
