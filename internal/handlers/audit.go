package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eassist/internal/store"
)

// AuditHandlers serves the audit trail (admin only).
type AuditHandlers struct {
	audit *store.AuditLog
}

func NewAuditHandlers(audit *store.AuditLog) *AuditHandlers {
	return &AuditHandlers{audit: audit}
}

// List returns audit entries newest first, optionally filtered by ?action=
// and capped by ?limit= (default 100).
func (h *AuditHandlers) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be 1-1000"})
			return
		}
		limit = v
	}
	entries := h.audit.List(limit, c.Query("action"))
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// Prune deletes entries older than ?days= (default 90).
func (h *AuditHandlers) Prune(c *gin.Context) {
	days := 90
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = v
	}
	removed, err := h.audit.ClearOlderThan(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prune audit log"})
		return
	}
	auditAction(c, h.audit, "audit_pruned", strconv.Itoa(removed)+" entries removed")
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
