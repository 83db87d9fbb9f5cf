package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eassist/internal/diag"
	"eassist/internal/store"
	"eassist/internal/utils"
)

// ToolHandlers exposes the remediation tools. These mutate host state, so
// the routes are gated to admin and technician roles and every invocation
// is audited.
type ToolHandlers struct {
	audit  *store.AuditLog
	logger *utils.Logger
}

func NewToolHandlers(audit *store.AuditLog, logger *utils.Logger) *ToolHandlers {
	return &ToolHandlers{audit: audit, logger: logger}
}

// FlushDNS clears the OS resolver cache.
func (h *ToolHandlers) FlushDNS(c *gin.Context) {
	res, err := diag.FlushDNS(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	auditAction(c, h.audit, "flush_dns", "resolver cache flushed")
	c.JSON(http.StatusOK, res)
}

// NetworkReset runs the platform's network stack reset sequence.
func (h *ToolHandlers) NetworkReset(c *gin.Context) {
	results, err := diag.NetworkReset(c.Request.Context())
	auditAction(c, h.audit, "network_reset", "network stack reset")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"results": results,
			"warning": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ErrorLogs returns the tail of the application log. ?lines caps the count,
// defaulting to 100.
func (h *ToolHandlers) ErrorLogs(c *gin.Context) {
	lines := 100
	if raw := c.Query("lines"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lines must be 1-1000"})
			return
		}
		lines = v
	}
	if h.logger == nil {
		c.JSON(http.StatusOK, gin.H{"lines": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": h.logger.Tail(lines), "file": h.logger.Path()})
}
