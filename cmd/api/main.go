package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/slaworks/sla-service/internal/api/http"
	"github.com/slaworks/sla-service/internal/api/http/handlers"
	"github.com/slaworks/sla-service/internal/compliance"
	"github.com/slaworks/sla-service/internal/config"
	"github.com/slaworks/sla-service/internal/events"
	"github.com/slaworks/sla-service/internal/observability"
	"github.com/slaworks/sla-service/internal/persistence"
	"github.com/slaworks/sla-service/internal/repository"
	"github.com/slaworks/sla-service/internal/service"
	"github.com/slaworks/sla-service/internal/worker"
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

	engine, err := buildEngine(cfg.SLA)
	if err != nil {
		logger.Fatal("failed to configure compliance engine", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.OpenPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(
		service.NewNotificationService(logger, cfg.Notification),
		cfg.Notification.QueueSize,
		logger,
	)
	notifications.Subscribe(dispatcher, service.NotificationEventTypes...)
	go notifications.Run(ctx)

	pool := pg.PoolHandle()
	complianceService := service.NewComplianceService(service.ComplianceDependencies{
		Engine:       engine,
		TicketRepo:   repository.NewTicketRepository(pool, logger),
		TaskRepo:     repository.NewTaskRepository(pool),
		InstanceRepo: repository.NewInstanceRepository(pool),
		HistoryRepo:  repository.NewComplianceHistoryRepository(pool),
		Cache:        repository.NewSnapshotCache(redis.Handle()),
		Snapshots:    service.NewSnapshotStore(),
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
		SnapshotTTL:  cfg.Sweep.SnapshotTTL(),
	})

	switch {
	case pool == nil:
		logger.Warn("compliance sweeper disabled: no postgres connection")
	case cfg.Sweep.Enabled:
		sweeper := worker.NewComplianceSweeper(complianceService, cfg.Sweep.Interval(), logger)
		go sweeper.Run(ctx)
	}

	pingers := map[string]handlers.Pinger{"postgres": pg}
	if redis.Handle() != nil {
		pingers["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pingers),
		SLA:       handlers.NewSLAHandler(complianceService),
		Tickets:   handlers.NewTicketsHandler(complianceService),
		WorkItems: handlers.NewWorkItemsHandler(complianceService),
		Metrics:   metrics,
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

func buildEngine(cfg config.SLAConfig) (*compliance.Engine, error) {
	matrix := compliance.DefaultMatrix()
	if cfg.MatrixFile != "" {
		loaded, err := compliance.LoadMatrix(cfg.MatrixFile)
		if err != nil {
			return nil, err
		}
		matrix = loaded
	}
	thresholds := compliance.Thresholds{AtRisk: cfg.AtRiskPercent, Overdue: cfg.OverduePercent}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return compliance.NewEngine(matrix, thresholds), nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
