// Package reports assembles downloadable diagnostic reports.
package reports

import (
	"context"
	"os"
	"time"

	"eassist/internal/diag"
	"eassist/internal/metrics"
	"eassist/internal/models"
)

// Type names the report flavors the API accepts.
const (
	TypeSystem  = "system"
	TypeNetwork = "network"
	TypeFull    = "full"
)

// Report is the JSON document returned to the client. Sections not requested
// stay nil and are omitted from the output.
type Report struct {
	Type        string                  `json:"report_type"`
	GeneratedAt time.Time               `json:"generated_at"`
	Hostname    string                  `json:"hostname"`
	System      *diag.HealthReport      `json:"system,omitempty"`
	Snapshot    *models.MetricsSnapshot `json:"snapshot,omitempty"`
	Network     *diag.NetworkReport     `json:"network,omitempty"`
	Processes   []models.ProcessInfo    `json:"processes,omitempty"`
}

// Generator builds reports from the live metrics provider and the
// diagnostics helpers.
type Generator struct {
	provider metrics.Provider
}

// NewGenerator returns a Generator backed by the given provider.
func NewGenerator(provider metrics.Provider) *Generator {
	return &Generator{provider: provider}
}

// ValidType reports whether kind names a known report type.
func ValidType(kind string) bool {
	switch kind {
	case TypeSystem, TypeNetwork, TypeFull:
		return true
	}
	return false
}

// Generate builds the requested report. Sections are best-effort: a failing
// collector leaves its section empty rather than failing the whole report,
// except when every requested section fails.
func (g *Generator) Generate(ctx context.Context, kind string) (*Report, error) {
	hostname, _ := os.Hostname()
	report := &Report{
		Type:        kind,
		GeneratedAt: time.Now().UTC(),
		Hostname:    hostname,
	}

	var lastErr error
	ok := false

	if kind == TypeSystem || kind == TypeFull {
		if health, err := diag.SystemHealth(ctx); err != nil {
			lastErr = err
		} else {
			report.System = health
			ok = true
		}
		if snap, err := g.provider.Snapshot(ctx); err != nil {
			lastErr = err
		} else {
			report.Snapshot = snap
			ok = true
		}
	}

	if kind == TypeNetwork || kind == TypeFull {
		if netinfo, err := diag.NetworkInfo(ctx); err != nil {
			lastErr = err
		} else {
			report.Network = netinfo
			ok = true
		}
	}

	if kind == TypeFull {
		if procs, err := diag.Processes(ctx, 25); err != nil {
			lastErr = err
		} else {
			report.Processes = procs
			ok = true
		}
	}

	if !ok && lastErr != nil {
		return nil, lastErr
	}
	return report, nil
}
