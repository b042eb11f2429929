package dto

import (
	"time"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	RequesterID   string                `json:"requester_id"`
	CategoryID    *string               `json:"category_id"`
	SubcategoryID *string               `json:"subcategory_id"`
	GroupID       *string               `json:"group_id"`
	AssigneeID    *string               `json:"assignee_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
	Tags          []string              `json:"tags"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	ResolutionNotes string   `json:"resolution_notes"`
	Tags            []string `json:"tags"`
}

// ReassignRequest payload. A null assignee unassigns the ticket.
type ReassignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// AssignGroupRequest payload.
type AssignGroupRequest struct {
	GroupID string `json:"group_id"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	RequesterID     string                `json:"requester_id"`
	CategoryID      *string               `json:"category_id"`
	SubcategoryID   *string               `json:"subcategory_id"`
	GroupID         *string               `json:"group_id"`
	AssigneeID      *string               `json:"assignee_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	Tags            []string              `json:"tags"`
	DueDate         *time.Time            `json:"due_date"`
	ResolutionTime  *time.Time            `json:"resolution_time"`
	ResolutionNotes *string               `json:"resolution_notes"`
	SLABreach       bool                  `json:"sla_breach"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TicketFromDomain maps a domain ticket to its response shape.
func TicketFromDomain(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              ticket.ID,
		ExternalKey:     ticket.ExternalKey,
		RequesterID:     ticket.RequesterID,
		CategoryID:      ticket.CategoryID,
		SubcategoryID:   ticket.SubcategoryID,
		GroupID:         ticket.GroupID,
		AssigneeID:      ticket.AssigneeID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		Tags:            ticket.Tags,
		DueDate:         ticket.DueDate,
		ResolutionTime:  ticket.ResolutionTime,
		ResolutionNotes: ticket.ResolutionNotes,
		SLABreach:       ticket.SLABreach,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

// ResolutionStatResponse aggregates resolution outcomes per group.
type ResolutionStatResponse struct {
	GroupID              *string `json:"group_id"`
	ResolvedCount        int64   `json:"resolved_count"`
	BreachedCount        int64   `json:"breached_count"`
	AvgResolutionMinutes float64 `json:"avg_resolution_minutes"`
}
