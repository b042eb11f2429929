package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
	"github.com/spec-kit/ticket-lifecycle/internal/repository"
)

// fakeTxManager runs the callback directly and records outcomes, standing
// in for the pgx transaction manager.
type fakeTxManager struct {
	calls     int
	rollbacks int
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if err := fn(ctx); err != nil {
		m.rollbacks++
		return err
	}
	return nil
}

type fakeTicketRepo struct {
	tickets     map[string]*domain.Ticket
	updateErr   error
	markErr     map[string]error
	markedCalls []string
	stats       []repository.ResolutionStat
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, markErr: map[string]error{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = fmt.Sprintf("tck-%d", len(r.tickets)+1)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, tenantID, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok || ticket.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *fakeTicketRepo) UpdateLifecycle(_ context.Context, ticket *domain.Ticket) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) ListBreachCandidates(_ context.Context, now time.Time, limit int, afterID *string) ([]repository.BreachCandidate, error) {
	return nil, errors.New("not used in service tests")
}

func (r *fakeTicketRepo) MarkBreached(_ context.Context, tenantID, id string) error {
	if err := r.markErr[id]; err != nil {
		return err
	}
	r.markedCalls = append(r.markedCalls, id)
	return nil
}

func (r *fakeTicketRepo) ResolutionStats(_ context.Context, tenantID string, from, to time.Time) ([]repository.ResolutionStat, error) {
	return r.stats, nil
}

type fakeHistoryRepo struct {
	entries   []domain.StatusHistoryEntry
	createErr error
	latestErr error
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.StatusHistoryEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	entry.ID = fmt.Sprintf("hist-%d", len(r.entries)+1)
	entry.ChangedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, tenantID, ticketID string, limit, offset int) ([]domain.StatusHistoryEntry, error) {
	var result []domain.StatusHistoryEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].TenantID == tenantID && r.entries[i].TicketID == ticketID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) LatestEntryForStatus(_ context.Context, tenantID, ticketID string, status domain.TicketStatus) (*domain.StatusHistoryEntry, error) {
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.TenantID == tenantID && entry.TicketID == ticketID &&
			entry.Kind == domain.TransitionKindStatus &&
			entry.NewStatus != nil && *entry.NewStatus == status {
			return &entry, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAuditRepo struct {
	entries   []domain.AuditLogEntry
	createErr error
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLogEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	entry.ID = fmt.Sprintf("aud-%d", len(r.entries)+1)
	entry.OccurredAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(_ context.Context, tenantID, entityType, entityID string, limit, offset int) ([]domain.AuditLogEntry, error) {
	var result []domain.AuditLogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.TenantID == tenantID && entry.EntityType == entityType && entry.EntityID == entityID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeSLAConfigRepo struct {
	configs map[string]*domain.SLAConfig
}

func (r *fakeSLAConfigRepo) GetByGroupID(_ context.Context, tenantID, groupID string) (*domain.SLAConfig, error) {
	cfg, ok := r.configs[groupID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cfg, nil
}

type fakeActorRepo struct {
	actors map[string]*domain.Actor
}

func (r *fakeActorRepo) GetByID(_ context.Context, tenantID, id string) (*domain.Actor, error) {
	actor, ok := r.actors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return actor, nil
}
