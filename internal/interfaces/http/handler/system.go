package handler

import (
	"net/http"
	"time"

	appdocs "github.com/dms/backend/internal/application/documents"
	"github.com/dms/backend/internal/application/system"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SystemHandler exposes log files, version checking and statistics
type SystemHandler struct {
	BaseHandler
	logs          *system.LogService
	remoteVersion *system.RemoteVersionService
	documents     *appdocs.DocumentService
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(
	logs *system.LogService,
	remoteVersion *system.RemoteVersionService,
	documents *appdocs.DocumentService,
) *SystemHandler {
	return &SystemHandler{
		logs:          logs,
		remoteVersion: remoteVersion,
		documents:     documents,
	}
}

// ListLogs godoc
// @Summary      List available log files
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[[]string]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /logs [get]
func (h *SystemHandler) ListLogs(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	logs, err := h.logs.List(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// TailLog godoc
// @Summary      Read a log file
// @Tags         system
// @Produce      json
// @Param        id path string true "Log id"
// @Success      200 {object} APIResponse[[]string]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /logs/{id} [get]
func (h *SystemHandler) TailLog(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	lines, err := h.logs.Tail(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// RemoteVersion godoc
// @Summary      Check for a newer release
// @Description  Queries the release feed and compares with the running version; failures degrade to version 0.0.0 without update
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[system.RemoteVersionResponse]
// @Router       /remote_version [get]
func (h *SystemHandler) RemoteVersion(c *gin.Context) {
	h.Success(c, h.remoteVersion.Check(c.Request.Context()))
}

// Statistics godoc
// @Summary      Dashboard statistics
// @Description  Totals, inbox count, mime type histogram and extracted character count over the viewer's documents
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[documents.Statistics]
// @Security     BearerAuth
// @Router       /statistics [get]
func (h *SystemHandler) Statistics(c *gin.Context) {
	viewer, err := getViewer(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	stats, err := h.documents.Statistics(c.Request.Context(), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/logs", h.ListLogs)
	rg.GET("/logs/:id", h.TailLog)
	rg.GET("/remote_version", h.RemoteVersion)
	rg.GET("/statistics", h.Statistics)
}

// HealthHandler answers liveness and readiness probes
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Live godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Verifies database connectivity
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
