// Package handlers implements the JSON API surface.
package handlers

import (
	"github.com/gin-gonic/gin"

	"eassist/internal/middleware"
	"eassist/internal/store"
)

// auditAction records an audit entry attributed to the authenticated user,
// or "System" when the route is unauthenticated.
func auditAction(c *gin.Context, audit *store.AuditLog, action, details string) {
	if audit == nil {
		return
	}
	actor := "System"
	if u := middleware.CurrentUser(c); u != nil {
		actor = u.Username
	}
	_ = audit.Add(action, details, actor, c.ClientIP(), c.Request.UserAgent())
}
