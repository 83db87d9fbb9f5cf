package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eassist/internal/realtime"
	"eassist/internal/store"
)

// SettingsHandlers reads and updates alert thresholds. Updates apply to the
// running monitor immediately and persist across restarts via the settings
// store.
type SettingsHandlers struct {
	evaluator *realtime.AlertEvaluator
	settings  *store.SettingsStore
	audit     *store.AuditLog
}

func NewSettingsHandlers(evaluator *realtime.AlertEvaluator, settings *store.SettingsStore, audit *store.AuditLog) *SettingsHandlers {
	return &SettingsHandlers{evaluator: evaluator, settings: settings, audit: audit}
}

// ApplySaved pushes persisted threshold overrides into the evaluator. Called
// once at startup, after the settings store loads.
func (h *SettingsHandlers) ApplySaved() {
	for kind := range h.evaluator.Thresholds() {
		saved := h.settings.Get("threshold_"+kind, "")
		if saved == "" {
			continue
		}
		v, err := strconv.ParseFloat(saved, 64)
		if err != nil {
			continue
		}
		h.evaluator.SetThreshold(kind, v)
	}
}

// Get returns the active alert thresholds.
func (h *SettingsHandlers) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"thresholds": h.evaluator.Thresholds()})
}

type UpdateSettingsRequest struct {
	Thresholds map[string]float64 `json:"thresholds" binding:"required"`
}

// Update applies new thresholds. Unknown metric names and out-of-range
// values are ignored rather than rejected; the response carries the
// thresholds actually in effect so the client can see what stuck.
func (h *SettingsHandlers) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thresholds object required"})
		return
	}

	for kind, value := range req.Thresholds {
		h.evaluator.SetThreshold(kind, value)
	}
	// Persist only what the evaluator accepted.
	for kind, value := range h.evaluator.Thresholds() {
		_ = h.settings.Set("threshold_"+kind, strconv.FormatFloat(value, 'f', -1, 64))
	}

	auditAction(c, h.audit, "thresholds_updated", fmt.Sprintf("%v", req.Thresholds))
	c.JSON(http.StatusOK, gin.H{"thresholds": h.evaluator.Thresholds()})
}
