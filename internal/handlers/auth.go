package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eassist/internal/auth"
	"eassist/internal/middleware"
	"eassist/internal/store"
	"eassist/internal/utils"
)

type AuthHandlers struct {
	users    *auth.UserStore
	sessions *auth.SessionStore
	audit    *store.AuditLog
	logger   *utils.Logger
	ttl      time.Duration
}

func NewAuthHandlers(users *auth.UserStore, sessions *auth.SessionStore, audit *store.AuditLog, logger *utils.Logger, ttl time.Duration) *AuthHandlers {
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	return &AuthHandlers{users: users, sessions: sessions, audit: audit, logger: logger, ttl: ttl}
}

func (h *AuthHandlers) logf(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Writef(format, args...)
	}
}

func (h *AuthHandlers) auditEvent(c *gin.Context, action, details, user string) {
	if h.audit == nil {
		return
	}
	_ = h.audit.Add(action, details, user, c.ClientIP(), c.Request.UserAgent())
}

type LoginRequest struct {
	Username string `json:"username" binding:"required" validate:"required,min=3,max=50"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
}

// Login authenticates credentials and issues a session token, returned both
// in the body (for API clients) and as an HTTP-only cookie (for the browser).
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}
	if err := middleware.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		h.logf("Login failed for '%s' from %s: %v", req.Username, c.ClientIP(), err)
		h.auditEvent(c, "login_failed", fmt.Sprintf("username=%s", req.Username), req.Username)
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			c.JSON(http.StatusLocked, gin.H{"error": "Account locked due to too many failed attempts. Try again later."})
		case errors.Is(err, auth.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		}
		return
	}

	token, err := h.sessions.Create(user.ID, c.ClientIP(), c.Request.UserAgent(), h.ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	middleware.SetAuthCookie(c, token, int(h.ttl.Seconds()))
	h.logf("User '%s' logged in from %s", user.Username, c.ClientIP())
	h.auditEvent(c, "login", "successful login", user.Username)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user.Sanitized(),
	})
}

// Logout invalidates the current session and clears the cookie.
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if token != "" {
		h.sessions.Invalidate(token)
	}
	middleware.ClearAuthCookie(c)
	if user := middleware.CurrentUser(c); user != nil {
		h.auditEvent(c, "logout", "session ended", user.Username)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, user.Sanitized())
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required" validate:"required,min=8,max=128"`
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every session for the user. The client must log in again.
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current and new password required"})
		return
	}
	if err := middleware.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be 8-128 characters"})
		return
	}

	if !auth.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}
	if err := h.users.SetPassword(user.Username, req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	h.sessions.InvalidateAll(user.ID)
	middleware.ClearAuthCookie(c)
	h.logf("User '%s' changed password", user.Username)
	h.auditEvent(c, "password_changed", "all sessions revoked", user.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated. Please log in again."})
}
