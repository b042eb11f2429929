package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-lifecycle/internal/config"
	"github.com/spec-kit/ticket-lifecycle/internal/events"
	"github.com/spec-kit/ticket-lifecycle/internal/observability"
	"github.com/spec-kit/ticket-lifecycle/internal/repository"
)

const sweepLockKey = "breach-sweep:lock"

// Locker is the slice of the redis client the sweeper needs for its
// single-instance lock. A nil Locker disables locking.
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// BreachSweeper periodically flags unresolved tickets past their SLA
// deadline. Each ticket is stamped in its own short statement so one bad
// row never stalls the pass; the recompute is idempotent, so abandoned
// work is picked up on the next tick.
type BreachSweeper struct {
	tickets    repository.TicketRepository
	locker     Locker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.SweepConfig
	instanceID string
	now        func() time.Time
}

// SweeperDependencies bundles collaborators for the sweeper.
type SweeperDependencies struct {
	TicketRepo repository.TicketRepository
	Locker     Locker
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewBreachSweeper constructs the sweeper.
func NewBreachSweeper(cfg config.SweepConfig, deps SweeperDependencies) *BreachSweeper {
	sweeper := &BreachSweeper{
		tickets:    deps.TicketRepo,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        cfg,
		instanceID: uuid.NewString(),
		now:        deps.Now,
	}
	if sweeper.now == nil {
		sweeper.now = time.Now
	}
	if sweeper.logger == nil {
		sweeper.logger = zap.NewNop()
	}
	return sweeper
}

// Run sweeps on the configured cadence until the context is cancelled.
func (s *BreachSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()

	s.logger.Info("breach sweeper started",
		zap.Duration("interval", s.cfg.Interval()),
		zap.Int("batch_size", s.cfg.BatchSize))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("breach sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass. It pages breach candidates in bounded
// batches; per-ticket failures are logged and skipped.
func (s *BreachSweeper) SweepOnce(ctx context.Context) (flagged int) {
	if !s.acquireLock(ctx) {
		s.logger.Debug("sweep lock held elsewhere; skipping pass")
		return 0
	}

	now := s.now()
	var afterID *string // nil seeds the first page; ids are uuids, not strings
	for {
		batchSize := s.cfg.BatchSize
		if batchSize <= 0 {
			batchSize = 200
		}
		candidates, err := s.tickets.ListBreachCandidates(ctx, now, batchSize, afterID)
		if err != nil {
			s.logger.Error("breach candidate listing failed", zap.Error(err))
			break
		}
		if len(candidates) == 0 {
			break
		}
		for _, candidate := range candidates {
			id := candidate.ID
			afterID = &id
			if err := s.tickets.MarkBreached(ctx, candidate.TenantID, candidate.ID); err != nil {
				s.logger.Warn("failed to stamp breach; skipping ticket",
					zap.String("ticket_id", candidate.ID),
					zap.Error(err))
				continue
			}
			flagged++
			s.metrics.RecordBreachFlagged()
			s.publishBreach(ctx, candidate, now)
		}
		if len(candidates) < batchSize {
			break
		}
	}

	s.metrics.RecordSweepRun()
	if flagged > 0 {
		s.logger.Info("sweep pass complete", zap.Int("flagged", flagged))
	}
	return flagged
}

func (s *BreachSweeper) acquireLock(ctx context.Context) bool {
	if s.locker == nil {
		return true
	}
	ok, err := s.locker.SetNX(ctx, sweepLockKey, s.instanceID, s.cfg.LockTTL()).Result()
	if err != nil {
		// lock store unreachable; sweep anyway, the stamp is idempotent
		s.logger.Warn("sweep lock unavailable", zap.Error(err))
		return true
	}
	return ok
}

func (s *BreachSweeper) publishBreach(ctx context.Context, candidate repository.BreachCandidate, now time.Time) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLABreached,
		TenantID:  candidate.TenantID,
		TicketID:  candidate.ID,
		Timestamp: now,
		Payload: events.SLABreachedPayload{
			DueDate:   candidate.DueDate,
			Status:    candidate.Status,
			FlaggedAt: now,
		},
	})
}
