package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eassist.config.json")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":5000" {
		t.Errorf("expected :5000, got %s", cfg.ListenAddr)
	}
	if cfg.Interval() != 2*time.Second {
		t.Errorf("expected 2s interval, got %s", cfg.Interval())
	}
	if cfg.Cooldown() != 60*time.Second {
		t.Errorf("expected 60s cooldown, got %s", cfg.Cooldown())
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %s", cfg.SessionTTL())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file should have been written: %v", err)
	}
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eassist.config.json")
	content := `{"listen_addr": ":8080", "cpu_threshold": 70, "monitor_interval_seconds": 5}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.ListenAddr)
	}
	if cfg.CPUThreshold != 70 {
		t.Errorf("expected 70, got %v", cfg.CPUThreshold)
	}
	if cfg.Interval() != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.Interval())
	}
	// Unset fields fall back to defaults.
	if cfg.MemoryThreshold != 85 {
		t.Errorf("expected default memory threshold, got %v", cfg.MemoryThreshold)
	}
}

func TestLoadClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eassist.config.json")
	content := `{"monitor_interval_seconds": 0, "cpu_threshold": 500, "session_ttl_hours": -1}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MonitorInterval != 2 {
		t.Errorf("expected clamped interval 2, got %d", cfg.MonitorInterval)
	}
	if cfg.CPUThreshold != 80 {
		t.Errorf("expected clamped cpu threshold 80, got %v", cfg.CPUThreshold)
	}
	if cfg.SessionTTLHours != 24 {
		t.Errorf("expected clamped TTL 24, got %d", cfg.SessionTTLHours)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eassist.config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
