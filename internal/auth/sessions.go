package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"eassist/internal/observe"
)

// DefaultSessionTTL is how long a session stays valid without explicit logout.
const DefaultSessionTTL = 24 * time.Hour

// Session ties an opaque token to an authenticated account. Sessions are
// created on login and removed on logout, expiry, or explicit revocation;
// they are never mutated in between.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// SessionStore issues and validates opaque session tokens. Tokens live in
// memory only; restarting the daemon logs everyone out.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	users    *UserStore

	now func() time.Time
}

func NewSessionStore(users *UserStore) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		users:    users,
		now:      time.Now,
	}
}

// generateToken returns 32 bytes of randomness, URL-safe encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create issues a new session token for the user.
func (s *SessionStore) Create(userID, ipAddress, userAgent string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	s.mu.Lock()
	s.sessions[token] = &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	observe.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	return token, nil
}

// Validate resolves a token to its user. Expired tokens are deleted on the
// way out (lazy cleanup); disabled accounts validate as not found.
func (s *SessionStore) Validate(token string) (*User, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && s.now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		observe.ActiveSessions.Set(float64(len(s.sessions)))
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	u, found := s.users.GetByID(sess.UserID)
	if !found || !u.IsActive {
		return nil, false
	}
	return u, true
}

// Invalidate removes a session; absent tokens are a no-op.
func (s *SessionStore) Invalidate(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	observe.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
}

// InvalidateAll removes every session belonging to the user.
func (s *SessionStore) InvalidateAll(userID string) {
	s.mu.Lock()
	for token, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, token)
		}
	}
	observe.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
