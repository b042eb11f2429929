package dto

import (
	"time"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// CreateStatusHistoryRequest payload.
type CreateStatusHistoryRequest struct {
	PreviousStatus     *domain.TicketStatus `json:"previous_status"`
	NewStatus          *domain.TicketStatus `json:"new_status"`
	PreviousAssignee   *string              `json:"previous_assignee"`
	NewAssignee        *string              `json:"new_assignee"`
	IsAssignmentChange bool                 `json:"is_assignment_change"`
}

// StatusHistoryResponse represents one transition record.
type StatusHistoryResponse struct {
	ID                  string                `json:"id"`
	TicketID            string                `json:"ticket_id"`
	Kind                domain.TransitionKind `json:"kind"`
	PreviousStatus      *domain.TicketStatus  `json:"previous_status"`
	NewStatus           *domain.TicketStatus  `json:"new_status"`
	PreviousAssignee    *string               `json:"previous_assignee"`
	NewAssignee         *string               `json:"new_assignee"`
	ChangedBy           string                `json:"changed_by"`
	ChangedByName       *string               `json:"changed_by_name"`
	ChangedAt           time.Time             `json:"changed_at"`
	TimeInStatusSeconds *int64                `json:"time_in_status_seconds"`
}

// HistoryFromDomain maps a history entry to its response shape.
func HistoryFromDomain(entry *domain.StatusHistoryEntry) StatusHistoryResponse {
	resp := StatusHistoryResponse{
		ID:               entry.ID,
		TicketID:         entry.TicketID,
		Kind:             entry.Kind,
		PreviousStatus:   entry.PreviousStatus,
		NewStatus:        entry.NewStatus,
		PreviousAssignee: entry.PreviousAssignee,
		NewAssignee:      entry.NewAssignee,
		ChangedBy:        entry.ChangedBy,
		ChangedByName:    entry.ChangedByName,
		ChangedAt:        entry.ChangedAt,
	}
	if entry.TimeInStatus != nil {
		seconds := int64(entry.TimeInStatus.Seconds())
		resp.TimeInStatusSeconds = &seconds
	}
	return resp
}
