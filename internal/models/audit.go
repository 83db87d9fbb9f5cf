package models

import "time"

// AuditEntry records one state-changing or notable action.
type AuditEntry struct {
	ID        uint64    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	User      string    `json:"user"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
