package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"eassist/internal/auth"
	"eassist/internal/middleware"
	"eassist/internal/store"
	"eassist/internal/utils"
)

// UserHandlers is the admin-only user management API.
type UserHandlers struct {
	users    *auth.UserStore
	sessions *auth.SessionStore
	audit    *store.AuditLog
	logger   *utils.Logger
}

func NewUserHandlers(users *auth.UserStore, sessions *auth.SessionStore, audit *store.AuditLog, logger *utils.Logger) *UserHandlers {
	return &UserHandlers{users: users, sessions: sessions, audit: audit, logger: logger}
}

func (h *UserHandlers) auditEvent(c *gin.Context, action, details string) {
	if h.audit == nil {
		return
	}
	actor := "System"
	if u := middleware.CurrentUser(c); u != nil {
		actor = u.Username
	}
	_ = h.audit.Add(action, details, actor, c.ClientIP(), c.Request.UserAgent())
}

// List returns all users without password hashes.
func (h *UserHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.users.Users()})
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" binding:"required" validate:"required,min=8,max=128"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"max=100"`
	Role     string `json:"role" binding:"required"`
}

// Create adds a user. Usernames are unique; the role must be one of the
// known roles.
func (h *UserHandlers) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := middleware.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	role := auth.Role(req.Role)
	if !auth.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin, technician, or viewer"})
		return
	}

	user, err := h.users.Create(req.Username, req.Password, req.Email, req.FullName, role)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	h.auditEvent(c, "user_created", fmt.Sprintf("username=%s role=%s", user.Username, user.Role))
	c.JSON(http.StatusCreated, user.Sanitized())
}

type UpdateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Update changes a user's role or active flag. Deactivating a user also
// revokes their sessions. Admins cannot deactivate themselves.
func (h *UserHandlers) Update(c *gin.Context) {
	username := c.Param("username")
	target, ok := h.users.Get(username)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	actor := middleware.CurrentUser(c)
	if req.IsActive != nil && !*req.IsActive && actor != nil && actor.Username == username {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot deactivate your own account"})
		return
	}

	if req.Role != nil {
		role := auth.Role(*req.Role)
		if !auth.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be admin, technician, or viewer"})
			return
		}
		if err := h.users.SetRole(username, role); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
			return
		}
		h.auditEvent(c, "user_role_changed", fmt.Sprintf("username=%s role=%s", username, role))
	}
	if req.IsActive != nil {
		if err := h.users.SetActive(username, *req.IsActive); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		if !*req.IsActive {
			h.sessions.InvalidateAll(target.ID)
		}
		h.auditEvent(c, "user_active_changed", fmt.Sprintf("username=%s active=%t", username, *req.IsActive))
	}

	updated, _ := h.users.Get(username)
	c.JSON(http.StatusOK, updated.Sanitized())
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required" validate:"required,min=8,max=128"`
}

// ResetPassword sets a new password for a user and revokes their sessions.
func (h *UserHandlers) ResetPassword(c *gin.Context) {
	username := c.Param("username")
	target, ok := h.users.Get(username)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password required"})
		return
	}
	if err := middleware.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-128 characters"})
		return
	}

	if err := h.users.SetPassword(username, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	h.sessions.InvalidateAll(target.ID)
	h.auditEvent(c, "user_password_reset", fmt.Sprintf("username=%s", username))
	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}

// Unlock clears a lockout so the user can try logging in again.
func (h *UserHandlers) Unlock(c *gin.Context) {
	username := c.Param("username")
	if err := h.users.Unlock(username); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlock user"})
		return
	}
	h.auditEvent(c, "user_unlocked", fmt.Sprintf("username=%s", username))
	c.JSON(http.StatusOK, gin.H{"message": "Account unlocked"})
}

// Delete removes a user and revokes their sessions. Self-deletion is
// rejected.
func (h *UserHandlers) Delete(c *gin.Context) {
	username := c.Param("username")
	if actor := middleware.CurrentUser(c); actor != nil && actor.Username == username {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}
	target, ok := h.users.Get(username)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := h.users.Delete(username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	h.sessions.InvalidateAll(target.ID)
	h.auditEvent(c, "user_deleted", fmt.Sprintf("username=%s", username))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
