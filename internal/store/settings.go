package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// SettingsStore is a string key/value store with a JSON file backend, used
// for runtime-tunable configuration such as alert thresholds.
type SettingsStore struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path, values: make(map[string]string)}
}

// Load reads settings from disk; a missing file is treated as empty.
func (s *SettingsStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
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
	return json.Unmarshal(data, &s.values)
}

func (s *SettingsStore) saveLocked() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Get returns the value for key, or def when absent.
func (s *SettingsStore) Get(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set stores one value.
func (s *SettingsStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.saveLocked()
}

// All returns a copy of every setting.
func (s *SettingsStore) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
