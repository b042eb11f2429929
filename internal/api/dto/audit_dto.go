package dto

import (
	"time"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// CreateAuditLogRequest payload.
type CreateAuditLogRequest struct {
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	Action        string         `json:"action"`
	PreviousState map[string]any `json:"previous_state"`
	NewState      map[string]any `json:"new_state"`
}

// AuditLogResponse represents one audit entry.
type AuditLogResponse struct {
	ID            string             `json:"id"`
	EntityType    string             `json:"entity_type"`
	EntityID      string             `json:"entity_id"`
	Action        domain.AuditAction `json:"action"`
	PreviousState map[string]any     `json:"previous_state"`
	NewState      map[string]any     `json:"new_state"`
	ActorID       *string            `json:"actor_id"`
	SourceIP      *string            `json:"source_ip"`
	UserAgent     *string            `json:"user_agent"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// AuditFromDomain maps an audit entry to its response shape.
func AuditFromDomain(entry *domain.AuditLogEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:            entry.ID,
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		Action:        entry.Action,
		PreviousState: entry.PreviousState,
		NewState:      entry.NewState,
		ActorID:       entry.ActorID,
		SourceIP:      entry.SourceIP,
		UserAgent:     entry.UserAgent,
		OccurredAt:    entry.OccurredAt,
	}
}
