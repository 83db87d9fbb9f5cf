package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eassist/internal/diag"
	"eassist/internal/metrics"
	"eassist/internal/store"
	"eassist/internal/utils"
)

// SystemHandlers serves on-demand system diagnostics and the current
// metrics snapshot.
type SystemHandlers struct {
	provider metrics.Provider
	audit    *store.AuditLog
	logger   *utils.Logger
}

func NewSystemHandlers(provider metrics.Provider, audit *store.AuditLog, logger *utils.Logger) *SystemHandlers {
	return &SystemHandlers{provider: provider, audit: audit, logger: logger}
}

// Current returns a fresh metrics snapshot, the same document the WebSocket
// pushes on the system channel.
func (h *SystemHandlers) Current(c *gin.Context) {
	snap, err := h.provider.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Health returns the full system health report.
func (h *SystemHandlers) Health(c *gin.Context) {
	report, err := diag.SystemHealth(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Processes lists running processes sorted by CPU usage. ?limit caps the
// count, defaulting to 50.
func (h *SystemHandlers) Processes(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-500"})
			return
		}
		limit = v
	}
	procs, err := diag.Processes(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processes": procs, "count": len(procs)})
}

// CleanTemp sweeps the OS temp directory and reports what was freed.
func (h *SystemHandlers) CleanTemp(c *gin.Context) {
	res, err := diag.CleanTemp(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.logger != nil {
		h.logger.Writef("Temp cleanup: %d entries removed, %.1f MB freed", res.FilesDeleted, res.SpaceFreedMB)
	}
	auditAction(c, h.audit, "clean_temp", "temp directory sweep")
	c.JSON(http.StatusOK, res)
}
