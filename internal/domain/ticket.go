package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusWaiting    TicketStatus = "WAITING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
	TicketStatusReopened   TicketStatus = "REOPENED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for support requests. DueDate is the computed SLA
// deadline and stays nil until a group is assigned. SLABreach is derived and
// cached; it is frozen at resolution time and re-evaluated by the sweep for
// unresolved tickets.
type Ticket struct {
	ID              string
	TenantID        string
	ExternalKey     string
	RequesterID     string
	CategoryID      *string
	SubcategoryID   *string
	GroupID         *string
	AssigneeID      *string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	Tags            []string
	DueDate         *time.Time
	ResolutionTime  *time.Time
	ResolutionNotes *string
	SLABreach       bool
	Deleted         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminalStatus reports whether no further transitions are accepted.
// CLOSED keeps a single outgoing edge to REOPENED, so only CANCELLED is
// fully terminal.
func IsTerminalStatus(s TicketStatus) bool {
	return s == TicketStatusCancelled
}

// IsSettledStatus reports whether the ticket's resolution clock has stopped,
// which controls how the breach detector picks its comparison instant.
func IsSettledStatus(s TicketStatus) bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}
