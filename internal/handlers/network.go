package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eassist/internal/diag"
	"eassist/internal/middleware"
	"eassist/internal/store"
)

// NetworkHandlers serves network diagnostics. The ping and traceroute
// endpoints shell out, so targets are validated as plain hostnames or IPs
// first.
type NetworkHandlers struct {
	audit *store.AuditLog
}

func NewNetworkHandlers(audit *store.AuditLog) *NetworkHandlers {
	return &NetworkHandlers{audit: audit}
}

// Info returns interfaces, addressing, and IO counters.
func (h *NetworkHandlers) Info(c *gin.Context) {
	report, err := diag.NetworkInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

type targetRequest struct {
	Target string `json:"target" binding:"required"`
}

func (h *NetworkHandlers) bindTarget(c *gin.Context) (string, bool) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target required"})
		return "", false
	}
	target, err := middleware.ValidateTarget(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return target, true
}

// Ping probes a host with the system ping utility.
func (h *NetworkHandlers) Ping(c *gin.Context) {
	target, ok := h.bindTarget(c)
	if !ok {
		return
	}
	res, err := diag.Ping(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	auditAction(c, h.audit, "ping", "target="+target)
	c.JSON(http.StatusOK, res)
}

// DNS resolves a domain with the system resolver. Failure to resolve is a
// 200 with success=false.
func (h *NetworkHandlers) DNS(c *gin.Context) {
	var req struct {
		Domain string `json:"domain" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain required"})
		return
	}
	domain, err := middleware.ValidateTarget(req.Domain)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, diag.DNSLookup(c.Request.Context(), domain))
}

// Traceroute traces the route to a host, capped at 15 hops.
func (h *NetworkHandlers) Traceroute(c *gin.Context) {
	target, ok := h.bindTarget(c)
	if !ok {
		return
	}
	res, err := diag.Traceroute(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	auditAction(c, h.audit, "traceroute", "target="+target)
	c.JSON(http.StatusOK, res)
}

// PortCheck tests TCP reachability of host:port.
func (h *NetworkHandlers) PortCheck(c *gin.Context) {
	var req struct {
		Host string `json:"host" binding:"required"`
		Port string `json:"port" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "host and port required"})
		return
	}
	host, err := middleware.ValidateTarget(req.Host)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	port, err := strconv.Atoi(req.Port)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid port"})
		return
	}
	res, err := diag.PortCheck(host, port)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
