package handler

import (
	"strconv"

	appdocs "github.com/dms/backend/internal/application/documents"
	"github.com/gin-gonic/gin"
)

// SearchHandler exposes search helpers beside the unified document listing
type SearchHandler struct {
	BaseHandler
	search *appdocs.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *appdocs.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Autocomplete godoc
// @Summary      Suggest search terms
// @Description  Completes a term prefix against the search index vocabulary
// @Tags         search
// @Produce      json
// @Param        term query string true "Term prefix"
// @Param        limit query int false "Maximum suggestions, default 10"
// @Success      200 {object} APIResponse[[]string]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /search/autocomplete [get]
func (h *SearchHandler) Autocomplete(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		h.BadRequest(c, "Term required")
		return
	}

	limit := 10
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	terms, err := h.search.Autocomplete(c.Request.Context(), term, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, terms)
}

// RegisterRoutes registers the search routes
func (h *SearchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search/autocomplete", h.Autocomplete)
}
