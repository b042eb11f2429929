package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.TicketStatus
		to      domain.TicketStatus
		allowed bool
	}{
		{"open to in_progress", domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{"open to cancelled", domain.TicketStatusOpen, domain.TicketStatusCancelled, true},
		{"open cannot skip to resolved", domain.TicketStatusOpen, domain.TicketStatusResolved, false},
		{"open cannot close", domain.TicketStatusOpen, domain.TicketStatusClosed, false},
		{"in_progress to waiting", domain.TicketStatusInProgress, domain.TicketStatusWaiting, true},
		{"in_progress to resolved", domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{"waiting back to in_progress", domain.TicketStatusWaiting, domain.TicketStatusInProgress, true},
		{"waiting to resolved", domain.TicketStatusWaiting, domain.TicketStatusResolved, true},
		{"resolved to closed", domain.TicketStatusResolved, domain.TicketStatusClosed, true},
		{"resolved to reopened", domain.TicketStatusResolved, domain.TicketStatusReopened, true},
		{"resolved cannot cancel", domain.TicketStatusResolved, domain.TicketStatusCancelled, false},
		{"closed to reopened", domain.TicketStatusClosed, domain.TicketStatusReopened, true},
		{"closed cannot resolve again", domain.TicketStatusClosed, domain.TicketStatusResolved, false},
		{"reopened to in_progress", domain.TicketStatusReopened, domain.TicketStatusInProgress, true},
		{"cancelled is terminal", domain.TicketStatusCancelled, domain.TicketStatusOpen, false},
		{"cancelled cannot reopen", domain.TicketStatusCancelled, domain.TicketStatusReopened, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateReturnsTypedErrors(t *testing.T) {
	err := Validate(domain.TicketStatusOpen, domain.TicketStatusResolved)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	assert.Equal(t, "OPEN", domainErr.Details["from"])
	assert.Equal(t, "RESOLVED", domainErr.Details["to"])

	err = Validate(domain.TicketStatusOpen, domain.TicketStatus("BOGUS"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	assert.NoError(t, Validate(domain.TicketStatusOpen, domain.TicketStatusInProgress))
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	assert.Empty(t, Successors(domain.TicketStatusCancelled))
	assert.Equal(t, []domain.TicketStatus{domain.TicketStatusReopened}, Successors(domain.TicketStatusClosed))
}
