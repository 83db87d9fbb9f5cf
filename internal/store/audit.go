package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"eassist/internal/models"
)

// AuditLog is an append-only action trail with a JSON file backend.
type AuditLog struct {
	path    string
	mu      sync.RWMutex
	entries []models.AuditEntry
	nextID  uint64
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path, nextID: 1}
}

// Load reads the trail from disk; a missing file is treated as empty.
func (a *AuditLog) Load() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = nil
	a.nextID = 1
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			_ = os.MkdirAll(filepath.Dir(a.path), 0o755)
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &a.entries); err != nil {
		return err
	}
	for _, e := range a.entries {
		if e.ID >= a.nextID {
			a.nextID = e.ID + 1
		}
	}
	return nil
}

// saveLocked writes the trail atomically. Caller MUST hold the write lock.
func (a *AuditLog) saveLocked() error {
	data, err := json.MarshalIndent(a.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, a.path)
}

// Add appends one entry. Audit failures are reported but callers treat them
// as non-fatal; a lost audit line never fails the audited operation.
func (a *AuditLog) Add(action, details, user, ipAddress, userAgent string) error {
	if user == "" {
		user = "System"
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, models.AuditEntry{
		ID:        a.nextID,
		Action:    action,
		Details:   details,
		User:      user,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	})
	a.nextID++
	return a.saveLocked()
}

// List returns entries newest first, optionally filtered by action, capped at
// limit (100 when limit <= 0).
func (a *AuditLog) List(limit int, actionFilter string) []models.AuditEntry {
	if limit <= 0 {
		limit = 100
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.AuditEntry, 0, limit)
	for i := len(a.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := a.entries[i]
		if actionFilter != "" && e.Action != actionFilter {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ClearOlderThan drops entries older than the given number of days and
// returns how many were removed.
func (a *AuditLog) ClearOlderThan(days int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.entries[:0]
	removed := 0
	for _, e := range a.entries {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	a.entries = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, a.saveLocked()
}
