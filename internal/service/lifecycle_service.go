package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	"github.com/spec-kit/ticket-lifecycle/internal/events"
	"github.com/spec-kit/ticket-lifecycle/internal/lifecycle"
	"github.com/spec-kit/ticket-lifecycle/internal/observability"
	"github.com/spec-kit/ticket-lifecycle/internal/repository"
	"github.com/spec-kit/ticket-lifecycle/internal/sla"
	apperrors "github.com/spec-kit/ticket-lifecycle/pkg/util"
)

// LifecycleService owns ticket state transitions. Every mutation runs the
// ticket update, its history entry and its audit entry inside one database
// transaction: either all three commit or none do.
type LifecycleService struct {
	tickets    repository.TicketRepository
	slaConfigs repository.SLAConfigRepository
	history    *HistoryService
	audit      *AuditService
	tx         repository.TxManager
	calendar   *sla.Calendar
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo    repository.TicketRepository
	SLAConfigRepo repository.SLAConfigRepository
	History       *HistoryService
	Audit         *AuditService
	Tx            repository.TxManager
	Calendar      *sla.Calendar
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Now           func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	RequesterID   string
	CategoryID    *string
	SubcategoryID *string
	GroupID       *string
	AssigneeID    *string
	Title         string
	Description   string
	Priority      domain.TicketPriority
	Tags          []string
}

// ResolveInput describes a resolution request.
type ResolveInput struct {
	ResolutionNotes string
	ResolvedBy      string
	Tags            []string
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	svc := &LifecycleService{
		tickets:    deps.TicketRepo,
		slaConfigs: deps.SLAConfigRepo,
		history:    deps.History,
		audit:      deps.Audit,
		tx:         deps.Tx,
		calendar:   deps.Calendar,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// CreateTicket opens a new ticket. When a group is supplied the SLA
// deadline is computed immediately from the creation instant.
func (s *LifecycleService) CreateTicket(ctx context.Context, tenantID string, input TicketCreateInput, meta RequestMeta) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.RequesterID) == "" {
		return nil, apperrors.NewValidationError("title and requester_id required", nil)
	}

	now := s.now()
	ticket := &domain.Ticket{
		TenantID:      tenantID,
		ExternalKey:   generateTicketKey(),
		RequesterID:   input.RequesterID,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		GroupID:       input.GroupID,
		AssigneeID:    input.AssigneeID,
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Status:        domain.TicketStatusOpen,
		Priority:      input.Priority,
		Tags:          input.Tags,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if input.GroupID != nil {
		cfg, err := s.slaConfigs.GetByGroupID(ctx, tenantID, *input.GroupID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("sla config", map[string]any{"group_id": *input.GroupID})
			}
			return nil, apperrors.MapError(err)
		}
		due := sla.ComputeDeadline(now, *cfg, s.calendar)
		ticket.DueDate = &due
	}

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.tickets.Create(txCtx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		openStatus := domain.TicketStatusOpen
		if _, err := s.history.Record(txCtx, RecordInput{
			TenantID:  tenantID,
			TicketID:  ticket.ID,
			Kind:      domain.TransitionKindStatus,
			NewStatus: &openStatus,
			ActorID:   input.RequesterID,
		}); err != nil {
			return err
		}
		_, err := s.audit.Log(txCtx, AuditInput{
			TenantID:   tenantID,
			EntityType: "ticket",
			EntityID:   ticket.ID,
			Action:     domain.AuditActionCreate,
			NewState:   ticketSnapshot(ticket),
			ActorID:    &ticket.RequesterID,
			Meta:       meta,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TenantID: tenantID,
		TicketID: ticket.ID,
		ActorID:  input.RequesterID,
		Payload: events.TicketCreatedPayload{
			GroupID:  ticket.GroupID,
			Priority: ticket.Priority,
			DueDate:  ticket.DueDate,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket. The breach flag is evaluated lazily against
// the read instant so unresolved tickets past deadline read as breached
// even before the sweep stamps them.
func (s *LifecycleService) GetTicket(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, tenantID, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !ticket.SLABreach {
		ticket.SLABreach = sla.IsBreached(ticket, s.now())
	}
	return ticket, nil
}

// Transition moves a ticket to a new status, recording history and audit
// atomically with the status update.
func (s *LifecycleService) Transition(ctx context.Context, tenantID, ticketID string, newStatus domain.TicketStatus, actorID, comment string, meta RequestMeta) (*domain.Ticket, *domain.StatusHistoryEntry, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, nil, apperrors.NewValidationError("actor_id required", nil)
	}
	return s.applyTransition(ctx, tenantID, ticketID, newStatus, actorID, comment, meta, nil)
}

// Resolve transitions a ticket to RESOLVED, freezing the resolution time
// and the breach flag, and stores the resolution notes.
func (s *LifecycleService) Resolve(ctx context.Context, tenantID, ticketID string, input ResolveInput, meta RequestMeta) (*domain.Ticket, error) {
	if strings.TrimSpace(input.ResolutionNotes) == "" {
		return nil, apperrors.NewValidationError("resolution_notes required", nil)
	}
	if strings.TrimSpace(input.ResolvedBy) == "" {
		return nil, apperrors.NewValidationError("resolved_by required", nil)
	}

	notes := strings.TrimSpace(input.ResolutionNotes)
	ticket, _, err := s.applyTransition(ctx, tenantID, ticketID, domain.TicketStatusResolved, input.ResolvedBy, notes, meta, func(t *domain.Ticket) {
		t.ResolutionNotes = &notes
		t.Tags = mergeTags(t.Tags, input.Tags)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TenantID: tenantID,
		TicketID: ticket.ID,
		ActorID:  input.ResolvedBy,
		Payload: events.TicketResolvedPayload{
			ResolutionTime: *ticket.ResolutionTime,
			SLABreach:      ticket.SLABreach,
		},
	})
	return ticket, nil
}

// Reassign changes the assignee without touching the status. The history
// entry carries the assignment kind and no time-in-status: an assignment
// change does not end a status residence.
func (s *LifecycleService) Reassign(ctx context.Context, tenantID, ticketID string, newAssignee *string, actorID string, meta RequestMeta) (*domain.StatusHistoryEntry, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, apperrors.NewValidationError("actor_id required", nil)
	}

	var entry *domain.StatusHistoryEntry
	var oldAssignee *string
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.lockTicket(txCtx, tenantID, ticketID)
		if err != nil {
			return err
		}
		if domain.IsTerminalStatus(ticket.Status) {
			return apperrors.NewInvalidTransition(string(ticket.Status), string(ticket.Status))
		}
		oldAssignee = ticket.AssigneeID
		ticket.AssigneeID = newAssignee
		if err := s.tickets.UpdateLifecycle(txCtx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		entry, err = s.history.Record(txCtx, RecordInput{
			TenantID:         tenantID,
			TicketID:         ticketID,
			Kind:             domain.TransitionKindAssignment,
			PreviousAssignee: oldAssignee,
			NewAssignee:      newAssignee,
			ActorID:          actorID,
		})
		if err != nil {
			return err
		}
		_, err = s.audit.Log(txCtx, AuditInput{
			TenantID:      tenantID,
			EntityType:    "ticket",
			EntityID:      ticketID,
			Action:        domain.AuditActionAssignmentChange,
			PreviousState: map[string]any{"assignee_id": oldAssignee},
			NewState:      map[string]any{"assignee_id": newAssignee},
			ActorID:       &actorID,
			Meta:          meta,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TenantID: tenantID,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketAssignedPayload{
			OldAssigneeID: oldAssignee,
			NewAssigneeID: newAssignee,
		},
	})
	return entry, nil
}

// AssignGroup sets the ticket's group and recomputes the SLA deadline from
// the creation instant under the group's configuration. Status changes
// never trigger a recompute; only group changes do.
func (s *LifecycleService) AssignGroup(ctx context.Context, tenantID, ticketID, groupID, actorID string, meta RequestMeta) (*domain.Ticket, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, apperrors.NewValidationError("group_id required", nil)
	}
	if strings.TrimSpace(actorID) == "" {
		return nil, apperrors.NewValidationError("actor_id required", nil)
	}

	cfg, err := s.slaConfigs.GetByGroupID(ctx, tenantID, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sla config", map[string]any{"group_id": groupID})
		}
		return nil, apperrors.MapError(err)
	}

	var ticket *domain.Ticket
	var oldGroup *string
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		ticket, err = s.lockTicket(txCtx, tenantID, ticketID)
		if err != nil {
			return err
		}
		oldGroup = ticket.GroupID
		due := sla.ComputeDeadline(ticket.CreatedAt, *cfg, s.calendar)
		ticket.GroupID = &groupID
		ticket.DueDate = &due
		if err := s.tickets.UpdateLifecycle(txCtx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		_, err = s.audit.Log(txCtx, AuditInput{
			TenantID:      tenantID,
			EntityType:    "ticket",
			EntityID:      ticketID,
			Action:        domain.AuditActionGroupChange,
			PreviousState: map[string]any{"group_id": oldGroup},
			NewState:      map[string]any{"group_id": groupID, "due_date": due},
			ActorID:       &actorID,
			Meta:          meta,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketGroupChanged,
		TenantID: tenantID,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketGroupChangedPayload{
			OldGroupID: oldGroup,
			NewGroupID: groupID,
			DueDate:    ticket.DueDate,
		},
	})
	return ticket, nil
}

// ResolutionReport aggregates resolved tickets per group in a window.
func (s *LifecycleService) ResolutionReport(ctx context.Context, tenantID string, from, to time.Time) ([]repository.ResolutionStat, error) {
	stats, err := s.tickets.ResolutionStats(ctx, tenantID, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if stats == nil {
		stats = []repository.ResolutionStat{}
	}
	return stats, nil
}

func (s *LifecycleService) applyTransition(ctx context.Context, tenantID, ticketID string, newStatus domain.TicketStatus, actorID, comment string, meta RequestMeta, mutate func(*domain.Ticket)) (*domain.Ticket, *domain.StatusHistoryEntry, error) {
	var ticket *domain.Ticket
	var entry *domain.StatusHistoryEntry
	var oldStatus domain.TicketStatus

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		ticket, err = s.lockTicket(txCtx, tenantID, ticketID)
		if err != nil {
			return err
		}
		if err := lifecycle.Validate(ticket.Status, newStatus); err != nil {
			return err
		}

		now := s.now()
		oldStatus = ticket.Status
		ticket.Status = newStatus
		switch newStatus {
		case domain.TicketStatusResolved:
			ticket.ResolutionTime = &now
			ticket.SLABreach = sla.IsBreached(ticket, now)
		case domain.TicketStatusReopened:
			ticket.ResolutionTime = nil
			ticket.SLABreach = sla.IsBreached(ticket, now)
		}
		if mutate != nil {
			mutate(ticket)
		}

		if err := s.tickets.UpdateLifecycle(txCtx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		entry, err = s.history.Record(txCtx, RecordInput{
			TenantID:       tenantID,
			TicketID:       ticketID,
			Kind:           domain.TransitionKindStatus,
			PreviousStatus: &oldStatus,
			NewStatus:      &ticket.Status,
			ActorID:        actorID,
		})
		if err != nil {
			return err
		}
		_, err = s.audit.Log(txCtx, AuditInput{
			TenantID:      tenantID,
			EntityType:    "ticket",
			EntityID:      ticketID,
			Action:        domain.AuditActionStatusChange,
			PreviousState: map[string]any{"status": oldStatus},
			NewState:      map[string]any{"status": newStatus, "comment": comment},
			ActorID:       &actorID,
			Meta:          meta,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordTransition(string(oldStatus), string(newStatus))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TenantID: tenantID,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, entry, nil
}

func (s *LifecycleService) lockTicket(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByIDForUpdate(ctx, tenantID, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func ticketSnapshot(ticket *domain.Ticket) map[string]any {
	return map[string]any{
		"status":      ticket.Status,
		"priority":    ticket.Priority,
		"group_id":    ticket.GroupID,
		"assignee_id": ticket.AssigneeID,
		"due_date":    ticket.DueDate,
	}
}

func mergeTags(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := append([]string{}, existing...)
	for _, tag := range existing {
		seen[tag] = true
	}
	for _, tag := range extra {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		merged = append(merged, tag)
	}
	return merged
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
