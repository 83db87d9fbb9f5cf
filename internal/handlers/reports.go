package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eassist/internal/reports"
	"eassist/internal/store"
)

// ReportHandlers generates downloadable diagnostic reports.
type ReportHandlers struct {
	generator *reports.Generator
	audit     *store.AuditLog
}

func NewReportHandlers(generator *reports.Generator, audit *store.AuditLog) *ReportHandlers {
	return &ReportHandlers{generator: generator, audit: audit}
}

// Generate builds a report of the requested type. ?download=true adds a
// Content-Disposition header so browsers save the JSON as a file.
func (h *ReportHandlers) Generate(c *gin.Context) {
	kind := c.DefaultQuery("type", reports.TypeSystem)
	if !reports.ValidType(kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be system, network, or full"})
		return
	}

	report, err := h.generator.Generate(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	auditAction(c, h.audit, "report_generated", "type="+kind)

	if c.Query("download") == "true" {
		filename := fmt.Sprintf("eassist_%s_report_%s.json", kind, time.Now().Format("20060102_150405"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	c.JSON(http.StatusOK, report)
}
