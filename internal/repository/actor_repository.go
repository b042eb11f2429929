package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// ActorRepository resolves actor identities. Identity management itself
// lives in an external service; this reads its replicated view so history
// entries can carry a display name.
type ActorRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Actor, error)
}

type actorRepository struct {
	pool *pgxpool.Pool
}

// NewActorRepository builds repository.
func NewActorRepository(pool *pgxpool.Pool) ActorRepository {
	return &actorRepository{pool: pool}
}

func (r *actorRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Actor, error) {
	const query = `
        SELECT id, tenant_id, display_name, role, active, created_at
        FROM actors WHERE tenant_id=$1 AND id=$2`
	var actor domain.Actor
	if err := querier(ctx, r.pool).QueryRow(ctx, query, tenantID, id).Scan(
		&actor.ID,
		&actor.TenantID,
		&actor.DisplayName,
		&actor.Role,
		&actor.Active,
		&actor.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &actor, nil
}
