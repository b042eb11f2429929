package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

const slaConfigCacheTTL = 5 * time.Minute

// SLAConfigRepository reads per-group SLA configurations. Configs are
// managed by group administration elsewhere and are read-only here, so a
// short-TTL redis cache sits in front of the table.
type SLAConfigRepository interface {
	GetByGroupID(ctx context.Context, tenantID, groupID string) (*domain.SLAConfig, error)
}

type slaConfigRepository struct {
	pool   *pgxpool.Pool
	cache  *redis.Client
	logger *zap.Logger
}

// NewSLAConfigRepository builds repository. cache may be nil.
func NewSLAConfigRepository(pool *pgxpool.Pool, cache *redis.Client, logger *zap.Logger) SLAConfigRepository {
	return &slaConfigRepository{pool: pool, cache: cache, logger: logger}
}

func (r *slaConfigRepository) GetByGroupID(ctx context.Context, tenantID, groupID string) (*domain.SLAConfig, error) {
	if cached := r.fromCache(ctx, tenantID, groupID); cached != nil {
		return cached, nil
	}

	const query = `
        SELECT id, tenant_id, group_id, business_hours_sla, after_hours_sla,
               weekend_business_sla, weekend_after_hours_sla, next_day_start, created_at, updated_at
        FROM sla_configs
        WHERE tenant_id=$1 AND group_id=$2`
	var cfg domain.SLAConfig
	if err := querier(ctx, r.pool).QueryRow(ctx, query, tenantID, groupID).Scan(
		&cfg.ID,
		&cfg.TenantID,
		&cfg.GroupID,
		&cfg.BusinessHoursSLA,
		&cfg.AfterHoursSLA,
		&cfg.WeekendBusinessSLA,
		&cfg.WeekendAfterHoursSLA,
		&cfg.NextDayStart,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.toCache(ctx, tenantID, groupID, &cfg)
	return &cfg, nil
}

func (r *slaConfigRepository) fromCache(ctx context.Context, tenantID, groupID string) *domain.SLAConfig {
	if r.cache == nil {
		return nil
	}
	payload, err := r.cache.Get(ctx, slaConfigCacheKey(tenantID, groupID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug("sla config cache read failed", zap.Error(err))
		}
		return nil
	}
	var cfg domain.SLAConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil
	}
	return &cfg
}

func (r *slaConfigRepository) toCache(ctx context.Context, tenantID, groupID string, cfg *domain.SLAConfig) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, slaConfigCacheKey(tenantID, groupID), payload, slaConfigCacheTTL).Err(); err != nil {
		r.logger.Debug("sla config cache write failed", zap.Error(err))
	}
}

func slaConfigCacheKey(tenantID, groupID string) string {
	return fmt.Sprintf("slacfg:%s:%s", tenantID, groupID)
}
