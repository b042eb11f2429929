package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	"github.com/spec-kit/ticket-lifecycle/internal/repository"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// HistoryService records and reads immutable status history.
type HistoryService struct {
	history repository.StatusHistoryRepository
	actors  repository.ActorRepository
	logger  *zap.Logger
	now     func() time.Time
}

// HistoryDependencies bundles collaborators for the history service.
type HistoryDependencies struct {
	HistoryRepo repository.StatusHistoryRepository
	ActorRepo   repository.ActorRepository
	Logger      *zap.Logger
	Now         func() time.Time
}

// RecordInput describes a transition to record. For a status change the
// status fields apply; for an assignment change the assignee fields do.
type RecordInput struct {
	TenantID         string
	TicketID         string
	Kind             domain.TransitionKind
	PreviousStatus   *domain.TicketStatus
	NewStatus        *domain.TicketStatus
	PreviousAssignee *string
	NewAssignee      *string
	ActorID          string
}

// NewHistoryService constructs the service.
func NewHistoryService(deps HistoryDependencies) *HistoryService {
	svc := &HistoryService{
		history: deps.HistoryRepo,
		actors:  deps.ActorRepo,
		logger:  deps.Logger,
		now:     deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Record appends one history entry. The time-in-status lookup is the single
// tolerated soft failure: if it errors the entry is still written, with the
// duration omitted.
func (s *HistoryService) Record(ctx context.Context, input RecordInput) (*domain.StatusHistoryEntry, error) {
	if err := validateRecordInput(input); err != nil {
		return nil, err
	}

	entry := &domain.StatusHistoryEntry{
		TenantID:         input.TenantID,
		TicketID:         input.TicketID,
		Kind:             input.Kind,
		PreviousStatus:   input.PreviousStatus,
		NewStatus:        input.NewStatus,
		PreviousAssignee: input.PreviousAssignee,
		NewAssignee:      input.NewAssignee,
		ChangedBy:        input.ActorID,
	}

	if input.Kind == domain.TransitionKindStatus && input.PreviousStatus != nil {
		entry.TimeInStatus = s.timeInStatus(ctx, input.TenantID, input.TicketID, *input.PreviousStatus)
	}

	if name := s.resolveActorName(ctx, input.TenantID, input.ActorID); name != "" {
		entry.ChangedByName = &name
	}

	if err := s.history.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// History returns the entries for a ticket, most-recent-first. A ticket
// with no history yields an empty slice, not an error.
func (s *HistoryService) History(ctx context.Context, tenantID, ticketID string, limit, offset int) ([]domain.StatusHistoryEntry, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, apperrors.NewValidationError("ticket_id required", nil)
	}
	entries, err := s.history.ListByTicket(ctx, tenantID, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.StatusHistoryEntry{}
	}
	return entries, nil
}

// timeInStatus derives how long the ticket sat in previousStatus by finding
// the entry that moved it there. Any failure here degrades to a nil
// duration; a history row is never lost over a derived field.
func (s *HistoryService) timeInStatus(ctx context.Context, tenantID, ticketID string, previousStatus domain.TicketStatus) *time.Duration {
	prior, err := s.history.LatestEntryForStatus(ctx, tenantID, ticketID, previousStatus)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("time-in-status lookup failed; recording entry without duration",
				zap.String("ticket_id", ticketID),
				zap.String("previous_status", string(previousStatus)),
				zap.Error(err))
		}
		return nil
	}
	elapsed := s.now().Sub(prior.ChangedAt)
	if elapsed < 0 {
		return nil
	}
	return &elapsed
}

func (s *HistoryService) resolveActorName(ctx context.Context, tenantID, actorID string) string {
	if s.actors == nil {
		return ""
	}
	actor, err := s.actors.GetByID(ctx, tenantID, actorID)
	if err != nil {
		return ""
	}
	return actor.DisplayName
}

func validateRecordInput(input RecordInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.TicketID) == "" {
		details["ticket_id"] = "required"
	}
	if strings.TrimSpace(input.ActorID) == "" {
		details["actor_id"] = "required"
	}
	switch input.Kind {
	case domain.TransitionKindStatus:
		if input.NewStatus == nil || strings.TrimSpace(string(*input.NewStatus)) == "" {
			details["new_status"] = "required"
		}
	case domain.TransitionKindAssignment:
	default:
		details["kind"] = "unknown transition kind"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid history input", details)
	}
	return nil
}
