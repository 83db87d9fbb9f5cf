package store

import (
	"errors"
	"path/filepath"
	"testing"

	"eassist/internal/models"
)

func newTicketFixture(t *testing.T) *TicketStore {
	t.Helper()
	s := NewTicketStore(filepath.Join(t.TempDir(), "tickets.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }

func TestTicketCreateDefaults(t *testing.T) {
	s := newTicketFixture(t)
	ticket, err := s.Create(models.Ticket{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ID == "" {
		t.Error("expected generated ID")
	}
	if ticket.Title != "Untitled" {
		t.Errorf("expected default title, got %q", ticket.Title)
	}
	if ticket.Status != models.TicketOpen {
		t.Errorf("expected open status, got %q", ticket.Status)
	}
	if ticket.Priority != models.PriorityMedium {
		t.Errorf("expected medium priority, got %q", ticket.Priority)
	}
	if ticket.Category != "General" {
		t.Errorf("expected General category, got %q", ticket.Category)
	}
	if ticket.CreatedAt.IsZero() || ticket.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestTicketGetAndUpdate(t *testing.T) {
	s := newTicketFixture(t)
	created, err := s.Create(models.Ticket{Title: "Printer down", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, ok := s.Get(created.ID)
	if !ok {
		t.Fatal("expected ticket to exist")
	}
	if got.Title != "Printer down" {
		t.Errorf("unexpected title %q", got.Title)
	}

	updated, err := s.Update(created.ID, models.TicketUpdate{
		Status:     strPtr(models.TicketResolved),
		Resolution: strPtr("replaced toner"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.TicketResolved {
		t.Errorf("expected resolved, got %q", updated.Status)
	}
	if updated.ResolvedAt == nil {
		t.Error("resolving must stamp ResolvedAt")
	}
	if updated.Resolution != "replaced toner" {
		t.Errorf("unexpected resolution %q", updated.Resolution)
	}
	// Untouched fields survive a partial update.
	if updated.Priority != models.PriorityHigh {
		t.Errorf("priority changed unexpectedly to %q", updated.Priority)
	}
}

func TestTicketUpdateMissing(t *testing.T) {
	s := newTicketFixture(t)
	if _, err := s.Update("nope", models.TicketUpdate{}); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestTicketListFilterAndLimit(t *testing.T) {
	s := newTicketFixture(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Create(models.Ticket{Title: "open ticket"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	closed, err := s.Create(models.Ticket{Title: "closed ticket"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Update(closed.ID, models.TicketUpdate{Status: strPtr(models.TicketClosed)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := s.List("", 0); len(got) != 4 {
		t.Errorf("expected 4 tickets, got %d", len(got))
	}
	if got := s.List(models.TicketOpen, 0); len(got) != 3 {
		t.Errorf("expected 3 open tickets, got %d", len(got))
	}
	if got := s.List("", 2); len(got) != 2 {
		t.Errorf("expected limit of 2, got %d", len(got))
	}
}

func TestTicketDelete(t *testing.T) {
	s := newTicketFixture(t)
	ticket, err := s.Create(models.Ticket{Title: "temp"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ticket.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get(ticket.ID); ok {
		t.Error("deleted ticket still present")
	}
	if err := s.Delete(ticket.ID); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestTicketStats(t *testing.T) {
	s := newTicketFixture(t)
	a, _ := s.Create(models.Ticket{})
	b, _ := s.Create(models.Ticket{})
	s.Create(models.Ticket{})
	s.Update(a.ID, models.TicketUpdate{Status: strPtr(models.TicketInProgress)})
	s.Update(b.ID, models.TicketUpdate{Status: strPtr(models.TicketResolved)})

	stats := s.Stats()
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.Open != 1 || stats.InProgress != 1 || stats.Resolved != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTicketPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.json")
	s := NewTicketStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	created, err := s.Create(models.Ticket{Title: "durable"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reloaded := NewTicketStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := reloaded.Get(created.ID)
	if !ok || got.Title != "durable" {
		t.Fatalf("ticket did not survive reload: %+v ok=%v", got, ok)
	}
}
