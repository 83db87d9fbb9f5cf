// Package store persists help-desk records with JSON file backends.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"eassist/internal/models"
)

var ErrTicketNotFound = errors.New("ticket not found")

// TicketStore manages help-desk tickets with a JSON file backend.
type TicketStore struct {
	path    string
	mu      sync.RWMutex
	tickets map[string]*models.Ticket
}

func NewTicketStore(path string) *TicketStore {
	return &TicketStore{path: path, tickets: make(map[string]*models.Ticket)}
}

// Load reads tickets from disk; a missing file is treated as an empty store.
func (s *TicketStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets = make(map[string]*models.Ticket)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	var list []*models.Ticket
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	for _, t := range list {
		if t != nil && t.ID != "" {
			s.tickets[t.ID] = t
		}
	}
	return nil
}

// saveLocked writes tickets to disk atomically. Caller MUST hold the write lock.
func (s *TicketStore) saveLocked() error {
	list := make([]*models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		list = append(list, t)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Create stores a new ticket, filling defaults for empty fields.
func (s *TicketStore) Create(t models.Ticket) (*models.Ticket, error) {
	if t.Title == "" {
		t.Title = "Untitled"
	}
	if t.Status == "" {
		t.Status = models.TicketOpen
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Category == "" {
		t.Category = "General"
	}
	if t.CreatedBy == "" {
		t.CreatedBy = "System"
	}
	t.ID = uuid.NewString()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = &t
	if err := s.saveLocked(); err != nil {
		delete(s.tickets, t.ID)
		return nil, err
	}
	c := t
	return &c, nil
}

// Get returns a copy of the ticket by ID.
func (s *TicketStore) Get(id string) (*models.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, false
	}
	c := *t
	return &c, true
}

// List returns tickets newest first, optionally filtered by status, capped at
// limit (100 when limit <= 0).
func (s *TicketStore) List(statusFilter string, limit int) []models.Ticket {
	if limit <= 0 {
		limit = 100
	}
	s.mu.RLock()
	out := make([]models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if statusFilter != "" && t.Status != statusFilter {
			continue
		}
		out = append(out, *t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Update applies the non-nil fields of upd to the ticket. Setting status to
// resolved stamps ResolvedAt.
func (s *TicketStore) Update(id string, upd models.TicketUpdate) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}

	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
		if t.Status == models.TicketResolved {
			now := time.Now()
			t.ResolvedAt = &now
		}
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.Category != nil {
		t.Category = *upd.Category
	}
	if upd.AssignedTo != nil {
		t.AssignedTo = *upd.AssignedTo
	}
	if upd.Resolution != nil {
		t.Resolution = *upd.Resolution
	}
	t.UpdatedAt = time.Now()

	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	c := *t
	return &c, nil
}

// Delete removes a ticket.
func (s *TicketStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return ErrTicketNotFound
	}
	delete(s.tickets, id)
	return s.saveLocked()
}

// Stats aggregates ticket counts per status.
func (s *TicketStore) Stats() models.TicketStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats models.TicketStats
	for _, t := range s.tickets {
		stats.Total++
		switch t.Status {
		case models.TicketOpen:
			stats.Open++
		case models.TicketInProgress:
			stats.InProgress++
		case models.TicketResolved:
			stats.Resolved++
		case models.TicketClosed:
			stats.Closed++
		}
	}
	return stats
}
