package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

const ticketColumns = `id, tenant_id, external_key, requester_id, category_id, subcategory_id, group_id,
       assignee_id, title, description, status, priority, tags, due_date,
       resolution_time, resolution_notes, sla_breach, deleted, created_at, updated_at`

// ResolutionStat aggregates resolution outcomes per group.
type ResolutionStat struct {
	GroupID              *string
	ResolvedCount        int64
	BreachedCount        int64
	AvgResolutionMinutes float64
}

// BreachCandidate is the slice of ticket state the sweep needs.
type BreachCandidate struct {
	ID       string
	TenantID string
	Status   domain.TicketStatus
	DueDate  time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Ticket, error)
	// GetByIDForUpdate locks the ticket row for the enclosing transaction,
	// serializing concurrent transitions on the same ticket.
	GetByIDForUpdate(ctx context.Context, tenantID, id string) (*domain.Ticket, error)
	UpdateLifecycle(ctx context.Context, ticket *domain.Ticket) error
	// ListBreachCandidates pages by id; a nil afterID starts from the first
	// page, since the uuid column cannot compare against an empty string.
	ListBreachCandidates(ctx context.Context, now time.Time, limit int, afterID *string) ([]BreachCandidate, error)
	MarkBreached(ctx context.Context, tenantID, id string) error
	ResolutionStats(ctx context.Context, tenantID string, from, to time.Time) ([]ResolutionStat, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (tenant_id, external_key, requester_id, category_id, subcategory_id, group_id,
                             assignee_id, title, description, status, priority, tags, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		ticket.TenantID,
		ticket.ExternalKey,
		ticket.RequesterID,
		ticket.CategoryID,
		ticket.SubcategoryID,
		ticket.GroupID,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Tags,
		ticket.DueDate,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE tenant_id=$1 AND id=$2 AND deleted=false`
	return r.fetchSingle(ctx, query, tenantID, id)
}

func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, tenantID, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE tenant_id=$1 AND id=$2 AND deleted=false FOR UPDATE`
	return r.fetchSingle(ctx, query, tenantID, id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := querier(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.TenantID,
		&ticket.ExternalKey,
		&ticket.RequesterID,
		&ticket.CategoryID,
		&ticket.SubcategoryID,
		&ticket.GroupID,
		&ticket.AssigneeID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Tags,
		&ticket.DueDate,
		&ticket.ResolutionTime,
		&ticket.ResolutionNotes,
		&ticket.SLABreach,
		&ticket.Deleted,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateLifecycle(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, assignee_id=$2, group_id=$3, due_date=$4,
            resolution_time=$5, resolution_notes=$6, sla_breach=$7, tags=$8, updated_at=NOW()
        WHERE tenant_id=$9 AND id=$10 AND deleted=false`
	cmd, err := querier(ctx, r.pool).Exec(ctx, query,
		ticket.Status,
		ticket.AssigneeID,
		ticket.GroupID,
		ticket.DueDate,
		ticket.ResolutionTime,
		ticket.ResolutionNotes,
		ticket.SLABreach,
		ticket.Tags,
		ticket.TenantID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListBreachCandidates pages unresolved tickets past their deadline that are
// not yet flagged, across all tenants, keyed by id for restartable paging.
func (r *ticketRepository) ListBreachCandidates(ctx context.Context, now time.Time, limit int, afterID *string) ([]BreachCandidate, error) {
	const query = `
        SELECT id, tenant_id, status, due_date
        FROM tickets
        WHERE deleted=false
          AND sla_breach=false
          AND due_date IS NOT NULL
          AND due_date < $1
          AND status NOT IN ('RESOLVED','CLOSED','CANCELLED')
          AND ($2::uuid IS NULL OR id > $2::uuid)
        ORDER BY id ASC
        LIMIT $3`
	rows, err := querier(ctx, r.pool).Query(ctx, query, now, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BreachCandidate
	for rows.Next() {
		var candidate BreachCandidate
		if err := rows.Scan(&candidate.ID, &candidate.TenantID, &candidate.Status, &candidate.DueDate); err != nil {
			return nil, err
		}
		result = append(result, candidate)
	}
	return result, rows.Err()
}

func (r *ticketRepository) MarkBreached(ctx context.Context, tenantID, id string) error {
	const query = `
        UPDATE tickets SET sla_breach=true, updated_at=NOW()
        WHERE tenant_id=$1 AND id=$2 AND sla_breach=false AND deleted=false`
	_, err := querier(ctx, r.pool).Exec(ctx, query, tenantID, id)
	return err
}

func (r *ticketRepository) ResolutionStats(ctx context.Context, tenantID string, from, to time.Time) ([]ResolutionStat, error) {
	const query = `
        SELECT group_id,
               COUNT(*) AS resolved_count,
               COUNT(*) FILTER (WHERE sla_breach) AS breached_count,
               COALESCE(AVG(EXTRACT(EPOCH FROM (resolution_time - created_at)) / 60), 0) AS avg_resolution_minutes
        FROM tickets
        WHERE tenant_id=$1 AND deleted=false
          AND resolution_time IS NOT NULL
          AND resolution_time >= $2 AND resolution_time < $3
        GROUP BY group_id
        ORDER BY group_id NULLS FIRST`
	rows, err := querier(ctx, r.pool).Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ResolutionStat
	for rows.Next() {
		var stat ResolutionStat
		if err := rows.Scan(&stat.GroupID, &stat.ResolvedCount, &stat.BreachedCount, &stat.AvgResolutionMinutes); err != nil {
			return nil, err
		}
		result = append(result, stat)
	}
	return result, rows.Err()
}
