package realtime

import (
	"fmt"
	"math"
	"sync"
	"time"

	"eassist/internal/models"
)

// DefaultCooldown is the minimum spacing between two alerts of one kind.
const DefaultCooldown = 60 * time.Second

// Default usage thresholds, in percent.
const (
	DefaultCPUThreshold    = 80
	DefaultMemoryThreshold = 85
	DefaultDiskThreshold   = 90
)

// alertRule fixes the evaluation order and severity per metric kind.
type alertRule struct {
	kind    string
	level   string
	message string
	read    func(*models.MetricsSnapshot) float64
}

// Rules are checked in declaration order: cpu, then memory, then disk.
var alertRules = []alertRule{
	{models.MetricCPU, models.AlertLevelWarning, "High CPU usage: %.1f%%",
		func(s *models.MetricsSnapshot) float64 { return s.CPU.Percent }},
	{models.MetricMemory, models.AlertLevelWarning, "High memory usage: %.1f%%",
		func(s *models.MetricsSnapshot) float64 { return s.Memory.Percent }},
	{models.MetricDisk, models.AlertLevelCritical, "Critical disk usage: %.1f%%",
		func(s *models.MetricsSnapshot) float64 { return s.Disk.Percent }},
}

// AlertEvaluator decides whether a snapshot justifies raising alerts. The
// threshold table and cooldown state share one mutex so the read-decide-write
// sequence per kind is atomic even when a manual evaluation races the loop.
type AlertEvaluator struct {
	mu         sync.Mutex
	thresholds map[string]float64
	lastFired  map[string]time.Time
	cooldown   time.Duration
}

func NewAlertEvaluator(cooldown time.Duration) *AlertEvaluator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &AlertEvaluator{
		thresholds: map[string]float64{
			models.MetricCPU:    DefaultCPUThreshold,
			models.MetricMemory: DefaultMemoryThreshold,
			models.MetricDisk:   DefaultDiskThreshold,
		},
		lastFired: make(map[string]time.Time),
		cooldown:  cooldown,
	}
}

// Evaluate returns the alerts the snapshot justifies at the given instant, in
// cpu, memory, disk order. A kind fires only when its reading strictly exceeds
// the threshold and its last alert is older than the cooldown; firing records
// the new timestamp as part of the same decision.
func (e *AlertEvaluator) Evaluate(snap *models.MetricsSnapshot, now time.Time) []models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	var alerts []models.Alert
	for _, rule := range alertRules {
		threshold := e.thresholds[rule.kind]
		value := rule.read(snap)
		if value <= threshold {
			continue
		}
		if last, ok := e.lastFired[rule.kind]; ok && now.Sub(last) <= e.cooldown {
			continue
		}
		e.lastFired[rule.kind] = now
		alerts = append(alerts, models.Alert{
			Type:      rule.kind,
			Level:     rule.level,
			Message:   fmt.Sprintf(rule.message, value),
			Value:     value,
			Threshold: threshold,
		})
	}
	return alerts
}

// SetThreshold updates one kind's threshold. Unrecognized kinds are ignored,
// matching the permissive settings surface; non-finite or out-of-range values
// are rejected the same way.
func (e *AlertEvaluator) SetThreshold(kind string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value > 100 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.thresholds[kind]; ok {
		e.thresholds[kind] = value
	}
}

// Thresholds returns a copy of the current threshold table.
func (e *AlertEvaluator) Thresholds() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.thresholds))
	for k, v := range e.thresholds {
		out[k] = v
	}
	return out
}
