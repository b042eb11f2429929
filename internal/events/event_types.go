package events

import (
	"time"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketResolved      EventType = "ticket_resolved"
	EventTicketGroupChanged  EventType = "ticket_group_changed"
	EventSLABreached         EventType = "sla_breached"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  string      `json:"tenant_id"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	GroupID  *string               `json:"group_id,omitempty"`
	Priority domain.TicketPriority `json:"priority"`
	DueDate  *time.Time            `json:"due_date,omitempty"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssigneeID *string `json:"old_assignee_id,omitempty"`
	NewAssigneeID *string `json:"new_assignee_id,omitempty"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolutionTime time.Time `json:"resolution_time"`
	SLABreach      bool      `json:"sla_breach"`
}

// TicketGroupChangedPayload payload.
type TicketGroupChangedPayload struct {
	OldGroupID *string    `json:"old_group_id,omitempty"`
	NewGroupID string     `json:"new_group_id"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	DueDate   time.Time           `json:"due_date"`
	Status    domain.TicketStatus `json:"status"`
	FlaggedAt time.Time           `json:"flagged_at"`
}
