package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-lifecycle/internal/api/http"
	"github.com/spec-kit/ticket-lifecycle/internal/api/http/handlers"
	"github.com/spec-kit/ticket-lifecycle/internal/auth"
	"github.com/spec-kit/ticket-lifecycle/internal/config"
	"github.com/spec-kit/ticket-lifecycle/internal/events"
	"github.com/spec-kit/ticket-lifecycle/internal/observability"
	"github.com/spec-kit/ticket-lifecycle/internal/persistence"
	"github.com/spec-kit/ticket-lifecycle/internal/repository"
	"github.com/spec-kit/ticket-lifecycle/internal/service"
	"github.com/spec-kit/ticket-lifecycle/internal/sla"
	"github.com/spec-kit/ticket-lifecycle/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	location, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		logger.Warn("unknown calendar timezone; falling back to UTC", zap.String("timezone", cfg.Calendar.Timezone))
		location = time.UTC
	}
	calendar := sla.NewCalendar(sla.CalendarOptions{
		Location:    location,
		StartHour:   cfg.Calendar.StartHour,
		EndHour:     cfg.Calendar.EndHour,
		WeekendDays: cfg.Calendar.WeekendDays,
		Holidays:    cfg.Calendar.Holidays,
	})

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	slaConfigRepo := repository.NewSLAConfigRepository(pool, redis.Client, logger)
	actorRepo := repository.NewActorRepository(pool)
	txManager := repository.NewTxManager(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	historyService := service.NewHistoryService(service.HistoryDependencies{
		HistoryRepo: historyRepo,
		ActorRepo:   actorRepo,
		Logger:      logger,
	})
	auditService := service.NewAuditService(auditRepo)
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:    ticketRepo,
		SLAConfigRepo: slaConfigRepo,
		History:       historyService,
		Audit:         auditService,
		Tx:            txManager,
		Calendar:      calendar,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	notificationService.RegisterHandlers()

	if cfg.Sweep.Enabled {
		sweeper := worker.NewBreachSweeper(cfg.Sweep, worker.SweeperDependencies{
			TicketRepo: ticketRepo,
			Locker:     redis.Client,
			Dispatcher: dispatcher,
			Metrics:    metrics,
			Logger:     logger,
		})
		go sweeper.Run(ctx)
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(lifecycleService),
		History:        handlers.NewHistoryHandler(historyService),
		Audit:          handlers.NewAuditHandler(auditService),
		Reports:        handlers.NewReportsHandler(lifecycleService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
