package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

const historyColumns = `id, tenant_id, ticket_id, kind, previous_status, new_status,
       previous_assignee, new_assignee, changed_by, changed_by_name, changed_at, time_in_status_seconds`

// StatusHistoryRepository stores immutable transition records. No update or
// delete exists: entries are append-only.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistoryEntry) error
	// ListByTicket returns entries most-recent-first.
	ListByTicket(ctx context.Context, tenantID, ticketID string, limit, offset int) ([]domain.StatusHistoryEntry, error)
	// LatestEntryForStatus finds the newest entry that moved the ticket into
	// the given status, used to derive time-in-status.
	LatestEntryForStatus(ctx context.Context, tenantID, ticketID string, status domain.TicketStatus) (*domain.StatusHistoryEntry, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO ticket_status_history (tenant_id, ticket_id, kind, previous_status, new_status,
                                           previous_assignee, new_assignee, changed_by, changed_by_name, time_in_status_seconds)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, changed_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		entry.TenantID,
		entry.TicketID,
		entry.Kind,
		entry.PreviousStatus,
		entry.NewStatus,
		entry.PreviousAssignee,
		entry.NewAssignee,
		entry.ChangedBy,
		entry.ChangedByName,
		durationToSeconds(entry.TimeInStatus),
	).Scan(&entry.ID, &entry.ChangedAt)
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, tenantID, ticketID string, limit, offset int) ([]domain.StatusHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + historyColumns + `
        FROM ticket_status_history
        WHERE tenant_id=$1 AND ticket_id=$2
        ORDER BY changed_at DESC, id DESC
        LIMIT $3 OFFSET $4`
	rows, err := querier(ctx, r.pool).Query(ctx, query, tenantID, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *statusHistoryRepository) LatestEntryForStatus(ctx context.Context, tenantID, ticketID string, status domain.TicketStatus) (*domain.StatusHistoryEntry, error) {
	query := `SELECT ` + historyColumns + `
        FROM ticket_status_history
        WHERE tenant_id=$1 AND ticket_id=$2 AND kind=$3 AND new_status=$4
        ORDER BY changed_at DESC, id DESC
        LIMIT 1`
	row := querier(ctx, r.pool).QueryRow(ctx, query, tenantID, ticketID, domain.TransitionKindStatus, status)
	return scanHistoryEntry(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryEntry(row rowScanner) (*domain.StatusHistoryEntry, error) {
	var entry domain.StatusHistoryEntry
	var seconds *int64
	if err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.TicketID,
		&entry.Kind,
		&entry.PreviousStatus,
		&entry.NewStatus,
		&entry.PreviousAssignee,
		&entry.NewAssignee,
		&entry.ChangedBy,
		&entry.ChangedByName,
		&entry.ChangedAt,
		&seconds,
	); err != nil {
		return nil, err
	}
	entry.TimeInStatus = secondsToDuration(seconds)
	return &entry, nil
}

func durationToSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	seconds := int64(d.Seconds())
	return &seconds
}

func secondsToDuration(seconds *int64) *time.Duration {
	if seconds == nil {
		return nil
	}
	d := time.Duration(*seconds) * time.Second
	return &d
}
