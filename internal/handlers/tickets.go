package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eassist/internal/middleware"
	"eassist/internal/models"
	"eassist/internal/store"
)

// TicketHandlers is the help-desk ticket CRUD API.
type TicketHandlers struct {
	tickets *store.TicketStore
	audit   *store.AuditLog
}

func NewTicketHandlers(tickets *store.TicketStore, audit *store.AuditLog) *TicketHandlers {
	return &TicketHandlers{tickets: tickets, audit: audit}
}

func validTicketStatus(s string) bool {
	switch s {
	case models.TicketOpen, models.TicketInProgress, models.TicketResolved, models.TicketClosed:
		return true
	}
	return false
}

func validTicketPriority(p string) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return true
	}
	return false
}

// List returns tickets newest first, optionally filtered by ?status= and
// capped by ?limit= (default 100).
func (h *TicketHandlers) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !validTicketStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = v
	}
	tickets := h.tickets.List(status, limit)
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
}

// Get returns one ticket by ID.
func (h *TicketHandlers) Get(c *gin.Context) {
	ticket, ok := h.tickets.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type CreateTicketRequest struct {
	Title       string `json:"title" binding:"required" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Priority    string `json:"priority"`
	Category    string `json:"category" validate:"max=100"`
	AssignedTo  string `json:"assigned_to" validate:"max=50"`
}

// Create opens a new ticket attributed to the authenticated user.
func (h *TicketHandlers) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if err := middleware.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	if req.Priority != "" && !validTicketPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be low, medium, high, or critical"})
		return
	}

	createdBy := "System"
	if u := middleware.CurrentUser(c); u != nil {
		createdBy = u.Username
	}
	ticket, err := h.tickets.Create(models.Ticket{
		Title:       middleware.SanitizeString(req.Title),
		Description: middleware.SanitizeString(req.Description),
		Priority:    req.Priority,
		Category:    middleware.SanitizeString(req.Category),
		AssignedTo:  middleware.SanitizeString(req.AssignedTo),
		CreatedBy:   createdBy,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}
	auditAction(c, h.audit, "ticket_created", fmt.Sprintf("id=%s title=%s", ticket.ID, ticket.Title))
	c.JSON(http.StatusCreated, ticket)
}

// Update applies a partial update. Status transitions to resolved stamp the
// resolution time.
func (h *TicketHandlers) Update(c *gin.Context) {
	var upd models.TicketUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if upd.Status != nil && !validTicketStatus(*upd.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}
	if upd.Priority != nil && !validTicketPriority(*upd.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority"})
		return
	}

	ticket, err := h.tickets.Update(c.Param("id"), upd)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ticket"})
		return
	}
	auditAction(c, h.audit, "ticket_updated", "id="+ticket.ID)
	c.JSON(http.StatusOK, ticket)
}

// Delete removes a ticket.
func (h *TicketHandlers) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.tickets.Delete(id); err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ticket"})
		return
	}
	auditAction(c, h.audit, "ticket_deleted", "id="+id)
	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted"})
}

// Stats returns ticket counts grouped by status.
func (h *TicketHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.tickets.Stats())
}
