package store

import (
	"path/filepath"
	"testing"
	"time"
)

func newAuditFixture(t *testing.T) *AuditLog {
	t.Helper()
	a := NewAuditLog(filepath.Join(t.TempDir(), "audit.json"))
	if err := a.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return a
}

func TestAuditAddAndList(t *testing.T) {
	a := newAuditFixture(t)
	if err := a.Add("login", "successful login", "alice", "127.0.0.1", "agent"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := a.Add("ticket_created", "id=1", "bob", "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	entries := a.List(0, "")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Action != "ticket_created" {
		t.Errorf("expected newest entry first, got %s", entries[0].Action)
	}
	if entries[1].User != "alice" || entries[1].IPAddress != "127.0.0.1" {
		t.Errorf("unexpected entry: %+v", entries[1])
	}
}

func TestAuditDefaultsUserToSystem(t *testing.T) {
	a := newAuditFixture(t)
	if err := a.Add("cleanup", "", "", "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := a.List(0, "")[0].User; got != "System" {
		t.Errorf("expected System, got %s", got)
	}
}

func TestAuditListFilterAndLimit(t *testing.T) {
	a := newAuditFixture(t)
	for i := 0; i < 5; i++ {
		a.Add("login", "", "u", "", "")
	}
	a.Add("logout", "", "u", "", "")

	if got := a.List(0, "login"); len(got) != 5 {
		t.Errorf("expected 5 login entries, got %d", len(got))
	}
	if got := a.List(3, ""); len(got) != 3 {
		t.Errorf("expected limit of 3, got %d", len(got))
	}
}

func TestAuditIDsMonotonicAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.json")
	a := NewAuditLog(path)
	if err := a.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	a.Add("first", "", "", "", "")
	a.Add("second", "", "", "", "")

	b := NewAuditLog(path)
	if err := b.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	b.Add("third", "", "", "", "")

	entries := b.List(0, "")
	if entries[0].ID != 3 {
		t.Errorf("expected ID 3 after reload, got %d", entries[0].ID)
	}
}

func TestAuditClearOlderThan(t *testing.T) {
	a := newAuditFixture(t)
	a.Add("old", "", "", "", "")
	a.Add("new", "", "", "", "")
	// Backdate the first entry.
	a.mu.Lock()
	a.entries[0].CreatedAt = time.Now().AddDate(0, 0, -10)
	a.mu.Unlock()

	removed, err := a.ClearOlderThan(7)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	entries := a.List(0, "")
	if len(entries) != 1 || entries[0].Action != "new" {
		t.Errorf("unexpected survivors: %+v", entries)
	}
}
