package realtime

import (
	"testing"
	"time"

	"eassist/internal/models"
)

func snapshot(cpu, mem, disk float64) *models.MetricsSnapshot {
	return &models.MetricsSnapshot{
		CPU:    models.CPUStats{Percent: cpu},
		Memory: models.MemoryStats{Percent: mem},
		Disk:   models.DiskStats{Percent: disk},
	}
}

func TestEvaluateFiresAboveThreshold(t *testing.T) {
	e := NewAlertEvaluator(60 * time.Second)
	now := time.Now()

	alerts := e.Evaluate(snapshot(95, 50, 50), now)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Type != models.MetricCPU {
		t.Errorf("expected cpu alert, got %s", a.Type)
	}
	if a.Level != models.AlertLevelWarning {
		t.Errorf("expected warning level, got %s", a.Level)
	}
	if a.Message != "High CPU usage: 95.0%" {
		t.Errorf("unexpected message: %q", a.Message)
	}
	if a.Value != 95 || a.Threshold != 80 {
		t.Errorf("expected value=95 threshold=80, got value=%v threshold=%v", a.Value, a.Threshold)
	}
}

func TestEvaluateThresholdIsStrict(t *testing.T) {
	e := NewAlertEvaluator(60 * time.Second)
	now := time.Now()

	if alerts := e.Evaluate(snapshot(80, 85, 90), now); len(alerts) != 0 {
		t.Fatalf("values equal to thresholds should not fire, got %d alerts", len(alerts))
	}
	if alerts := e.Evaluate(snapshot(80.01, 85, 90), now); len(alerts) != 1 {
		t.Fatalf("expected 1 alert just above threshold, got %d", len(alerts))
	}
}

func TestEvaluateCooldown(t *testing.T) {
	e := NewAlertEvaluator(60 * time.Second)
	base := time.Now()

	if alerts := e.Evaluate(snapshot(95, 0, 0), base); len(alerts) != 1 {
		t.Fatalf("first evaluation should fire, got %d alerts", len(alerts))
	}
	// Still inside the cooldown window.
	if alerts := e.Evaluate(snapshot(95, 0, 0), base.Add(30*time.Second)); len(alerts) != 0 {
		t.Fatalf("expected no alert at +30s, got %d", len(alerts))
	}
	// Exactly the cooldown is still suppressed; spacing must exceed it.
	if alerts := e.Evaluate(snapshot(95, 0, 0), base.Add(60*time.Second)); len(alerts) != 0 {
		t.Fatalf("expected no alert at exactly +60s, got %d", len(alerts))
	}
	if alerts := e.Evaluate(snapshot(95, 0, 0), base.Add(61*time.Second)); len(alerts) != 1 {
		t.Fatalf("expected alert at +61s, got %d", len(alerts))
	}
}

func TestEvaluateCooldownIsPerKind(t *testing.T) {
	e := NewAlertEvaluator(60 * time.Second)
	base := time.Now()

	if alerts := e.Evaluate(snapshot(95, 0, 0), base); len(alerts) != 1 {
		t.Fatalf("expected cpu alert, got %d", len(alerts))
	}
	// Memory crossing later is not suppressed by the cpu cooldown.
	alerts := e.Evaluate(snapshot(95, 95, 0), base.Add(10*time.Second))
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Type != models.MetricMemory {
		t.Errorf("expected memory alert, got %s", alerts[0].Type)
	}
}

func TestEvaluateOrderAndLevels(t *testing.T) {
	e := NewAlertEvaluator(60 * time.Second)

	alerts := e.Evaluate(snapshot(95, 95, 95), time.Now())
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	wantTypes := []string{models.MetricCPU, models.MetricMemory, models.MetricDisk}
	wantLevels := []string{models.AlertLevelWarning, models.AlertLevelWarning, models.AlertLevelCritical}
	for i, a := range alerts {
		if a.Type != wantTypes[i] {
			t.Errorf("alert %d: expected type %s, got %s", i, wantTypes[i], a.Type)
		}
		if a.Level != wantLevels[i] {
			t.Errorf("alert %d: expected level %s, got %s", i, wantLevels[i], a.Level)
		}
	}
}

func TestSetThreshold(t *testing.T) {
	e := NewAlertEvaluator(60 * time.Second)

	e.SetThreshold("cpu", 50)
	if got := e.Thresholds()["cpu"]; got != 50 {
		t.Errorf("expected cpu threshold 50, got %v", got)
	}

	// Unknown kinds and out-of-range values are ignored.
	e.SetThreshold("gpu", 50)
	if _, ok := e.Thresholds()["gpu"]; ok {
		t.Error("unknown kind should not be added")
	}
	e.SetThreshold("cpu", -5)
	e.SetThreshold("cpu", 150)
	if got := e.Thresholds()["cpu"]; got != 50 {
		t.Errorf("out-of-range values should be ignored, got %v", got)
	}

	alerts := e.Evaluate(snapshot(55, 0, 0), time.Now())
	if len(alerts) != 1 {
		t.Fatalf("expected alert with lowered threshold, got %d", len(alerts))
	}
}
