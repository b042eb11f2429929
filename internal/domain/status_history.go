package domain

import "time"

// TransitionKind tags what a history entry records. Consumers dispatch on
// the kind instead of parsing synthesized description strings.
type TransitionKind string

const (
	TransitionKindStatus     TransitionKind = "STATUS_CHANGE"
	TransitionKindAssignment TransitionKind = "ASSIGNMENT_CHANGE"
)

// StatusHistoryEntry is an immutable transition record. For status changes
// PreviousStatus/NewStatus carry ticket statuses; for assignment changes
// PreviousAssignee/NewAssignee carry actor ids and the status fields are
// left empty. TimeInStatus is the duration spent in PreviousStatus, nil for
// the first entry, for assignment changes, and when the duration lookup
// degrades (history rows are never lost over a derived-field failure).
type StatusHistoryEntry struct {
	ID               string
	TenantID         string
	TicketID         string
	Kind             TransitionKind
	PreviousStatus   *TicketStatus
	NewStatus        *TicketStatus
	PreviousAssignee *string
	NewAssignee      *string
	ChangedBy        string
	ChangedByName    *string
	ChangedAt        time.Time
	TimeInStatus     *time.Duration
}
