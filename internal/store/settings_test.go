package store

import (
	"path/filepath"
	"testing"
)

func TestSettingsGetSetAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := NewSettingsStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := s.Get("threshold_cpu", "80"); got != "80" {
		t.Errorf("expected default, got %q", got)
	}
	if err := s.Set("threshold_cpu", "65"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.Get("threshold_cpu", "80"); got != "65" {
		t.Errorf("expected 65, got %q", got)
	}

	reloaded := NewSettingsStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get("threshold_cpu", "80"); got != "65" {
		t.Errorf("value did not survive reload, got %q", got)
	}
	if all := reloaded.All(); len(all) != 1 {
		t.Errorf("expected 1 setting, got %v", all)
	}
}
