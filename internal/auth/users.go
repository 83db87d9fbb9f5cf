package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the system.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleViewer:
		return true
	}
	return false
}

// Lockout policy: five consecutive failures lock the account for 15 minutes.
const (
	maxFailedAttempts = 5
	lockoutDuration   = 15 * time.Minute
)

// User holds authentication data and role for an account.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"password_hash"`
	Email          string     `json:"email,omitempty"`
	FullName       string     `json:"full_name,omitempty"`
	Role           Role       `json:"role"`
	IsActive       bool       `json:"is_active"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// Sanitized returns a copy safe to return to API clients: the password hash
// and lockout bookkeeping never leave the store.
func (u *User) Sanitized() User {
	c := *u
	c.PasswordHash = ""
	c.FailedAttempts = 0
	c.LockedUntil = nil
	return c
}

// UserStore manages persistent accounts with a JSON file backend.
type UserStore struct {
	path  string
	mu    sync.RWMutex
	users map[string]*User

	// now is swapped out by tests exercising the lockout window.
	now func() time.Time
}

// NewUserStore initializes a user store backed by the given file path.
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path, users: make(map[string]*User), now: time.Now}
}

// Load reads users from disk; a missing file is treated as an empty store.
func (s *UserStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*User)
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
	var list []*User
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	for _, u := range list {
		if u != nil && u.Username != "" {
			s.users[u.Username] = u
		}
	}
	return nil
}

// saveLocked writes users to disk atomically with 0600 permissions.
// Caller MUST hold s.mu (write lock) before calling.
func (s *UserStore) saveLocked() error {
	list := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		list = append(list, u)
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

// IsEmpty reports whether no accounts exist.
func (s *UserStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users) == 0
}

// Get returns a copy of the user by username.
func (s *UserStore) Get(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, false
	}
	c := *u
	return &c, true
}

// GetByID returns a copy of the user by account ID.
func (s *UserStore) GetByID(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			c := *u
			return &c, true
		}
	}
	return nil, false
}

// Users returns a snapshot of all accounts without credential material,
// newest first.
func (s *UserStore) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Sanitized())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Create adds a new active account with a freshly hashed password.
func (s *UserStore) Create(username, password, email, fullName string, role Role) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return nil, ErrUserExists
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	s.users[username] = u
	if err := s.saveLocked(); err != nil {
		delete(s.users, username)
		return nil, err
	}
	c := u.Sanitized()
	return &c, nil
}

// SetPassword replaces a user's password hash.
func (s *UserStore) SetPassword(username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return s.saveLocked()
}

// SetRole changes a user's role.
func (s *UserStore) SetRole(username string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	return s.saveLocked()
}

// Unlock clears a lockout and resets the failure counter.
func (s *UserStore) Unlock(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.FailedAttempts = 0
	u.LockedUntil = nil
	return s.saveLocked()
}

// SetActive enables or disables an account.
func (s *UserStore) SetActive(username string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return ErrUserNotFound
	}
	u.IsActive = active
	return s.saveLocked()
}

// Delete removes an account.
func (s *UserStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, username)
	return s.saveLocked()
}

// Authenticate verifies credentials and applies the lockout policy. The whole
// check-and-update sequence runs under the write lock so concurrent attempts
// cannot lose failure counts.
func (s *UserStore) Authenticate(username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	now := s.now()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if !CheckPassword(password, u.PasswordHash) {
		u.FailedAttempts++
		if u.FailedAttempts >= maxFailedAttempts {
			until := now.Add(lockoutDuration)
			u.LockedUntil = &until
		}
		_ = s.saveLocked()
		return nil, ErrInvalidCredentials
	}

	u.FailedAttempts = 0
	u.LockedUntil = nil
	login := now
	u.LastLogin = &login
	_ = s.saveLocked()

	c := *u
	return &c, nil
}
