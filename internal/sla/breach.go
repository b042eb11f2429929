package sla

import (
	"time"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// IsBreached reports whether the ticket has exceeded its SLA deadline at
// the given instant. Tickets with no deadline never breach. For resolved or
// closed tickets the frozen resolution time is compared; otherwise now is.
// Pure: no I/O, no hidden clock.
func IsBreached(ticket *domain.Ticket, now time.Time) bool {
	if ticket == nil || ticket.DueDate == nil {
		return false
	}
	reference := now
	if domain.IsSettledStatus(ticket.Status) && ticket.ResolutionTime != nil {
		reference = *ticket.ResolutionTime
	}
	return reference.After(*ticket.DueDate)
}
