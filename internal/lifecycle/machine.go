package lifecycle

import (
	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// allowedTransitions is the full status graph. CANCELLED is reachable from
// every non-terminal state; REOPENED only from RESOLVED/CLOSED.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress: {domain.TicketStatusWaiting, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusWaiting:    {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusReopened},
	domain.TicketStatusClosed:     {domain.TicketStatusReopened},
	domain.TicketStatusReopened:   {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusCancelled:  {},
}

// CanTransition reports whether next is a legal successor of current.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Validate rejects illegal edges with a typed InvalidTransition error.
func Validate(current, next domain.TicketStatus) error {
	if !IsKnownStatus(next) {
		return apperrors.NewValidationError("unknown ticket status", map[string]any{"status": string(next)})
	}
	if !CanTransition(current, next) {
		return apperrors.NewInvalidTransition(string(current), string(next))
	}
	return nil
}

// IsKnownStatus reports whether the value is one of the lifecycle states.
func IsKnownStatus(s domain.TicketStatus) bool {
	if _, ok := allowedTransitions[s]; ok {
		return true
	}
	return false
}

// Successors returns a copy of the legal successor set for a status.
func Successors(current domain.TicketStatus) []domain.TicketStatus {
	return append([]domain.TicketStatus{}, allowedTransitions[current]...)
}
