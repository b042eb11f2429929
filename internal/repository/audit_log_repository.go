package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// AuditLogRepository stores generic before/after snapshots. Append-only.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByEntity(ctx context.Context, tenantID, entityType, entityID string, limit, offset int) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_logs (tenant_id, entity_type, entity_id, action, previous_state, new_state,
                                actor_id, source_ip, user_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, occurred_at`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		entry.TenantID,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.PreviousState,
		entry.NewState,
		entry.ActorID,
		entry.SourceIP,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.OccurredAt)
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, tenantID, entityType, entityID string, limit, offset int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, tenant_id, entity_type, entity_id, action, previous_state, new_state,
               actor_id, source_ip, user_agent, occurred_at
        FROM audit_logs
        WHERE tenant_id=$1 AND entity_type=$2 AND entity_id=$3
        ORDER BY occurred_at DESC, id DESC
        LIMIT $4 OFFSET $5`
	rows, err := querier(ctx, r.pool).Query(ctx, query, tenantID, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&entry.PreviousState,
			&entry.NewState,
			&entry.ActorID,
			&entry.SourceIP,
			&entry.UserAgent,
			&entry.OccurredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
