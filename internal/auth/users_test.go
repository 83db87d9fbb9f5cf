package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()
	store := NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func TestCreateAndAuthenticate(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("alice", "secret123", "alice@example.com", "Alice", RoleTechnician); err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := store.Authenticate("alice", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Username != "alice" || u.Role != RoleTechnician {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.LastLogin == nil {
		t.Error("successful login should stamp LastLogin")
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("alice", "secret123", "", "", RoleViewer); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create("alice", "other456", "", "", RoleViewer); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Authenticate("ghost", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("bob", "secret123", "", "", RoleViewer); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SetActive("bob", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := store.Authenticate("bob", "secret123"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestLockoutAfterFiveFailures(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("carol", "secret123", "", "", RoleViewer); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now()
	store.now = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		if _, err := store.Authenticate("carol", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	// Fifth failure locks the account.
	if _, err := store.Authenticate("carol", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials on fifth failure, got %v", err)
	}

	// Even the correct password is rejected while locked.
	if _, err := store.Authenticate("carol", "secret123"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	// Still locked just before the window ends.
	now = now.Add(14 * time.Minute)
	if _, err := store.Authenticate("carol", "secret123"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked at +14m, got %v", err)
	}

	// Lock expires after 15 minutes.
	now = now.Add(2 * time.Minute)
	u, err := store.Authenticate("carol", "secret123")
	if err != nil {
		t.Fatalf("expected login after lockout expiry, got %v", err)
	}
	if u.FailedAttempts != 0 || u.LockedUntil != nil {
		t.Errorf("successful login should reset lockout state: %+v", u)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("dave", "secret123", "", "", RoleViewer); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 4; i++ {
		store.Authenticate("dave", "wrong")
	}
	if _, err := store.Authenticate("dave", "secret123"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	// The counter reset, so four more failures do not lock.
	for i := 0; i < 4; i++ {
		store.Authenticate("dave", "wrong")
	}
	if _, err := store.Authenticate("dave", "secret123"); err != nil {
		t.Fatalf("expected login to succeed after counter reset, got %v", err)
	}
}

func TestUnlockClearsLock(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("erin", "secret123", "", "", RoleViewer); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 5; i++ {
		store.Authenticate("erin", "wrong")
	}
	if _, err := store.Authenticate("erin", "secret123"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected lock, got %v", err)
	}
	if err := store.Unlock("erin"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := store.Authenticate("erin", "secret123"); err != nil {
		t.Fatalf("expected login after unlock, got %v", err)
	}
}

func TestPersistenceAcrossLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	store := NewUserStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := store.Create("frank", "secret123", "", "", RoleAdmin); err != nil {
		t.Fatalf("create: %v", err)
	}

	reloaded := NewUserStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, err := reloaded.Authenticate("frank", "secret123"); err != nil {
		t.Fatalf("authenticate after reload: %v", err)
	}
}

func TestSanitizedStripsSecrets(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("gina", "secret123", "", "", RoleViewer); err != nil {
		t.Fatalf("create: %v", err)
	}
	users := store.Users()
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].PasswordHash != "" {
		t.Error("sanitized user must not carry the password hash")
	}
}
