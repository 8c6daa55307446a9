package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/servicedesk/internal/api/http"
	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/persistence"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
	"github.com/spec-kit/servicedesk/internal/storage"
	"github.com/spec-kit/servicedesk/internal/worker"
)

const (
	shutdownTimeout = 15 * time.Second
	redisTaskTTL    = 24 * time.Hour
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	probes := map[string]handlers.Pinger{}
	if pg.Enabled() {
		probes["postgres"] = pg
	}

	store := repository.NewMemoryStore().Store()
	if cfg.App.StoreBackend == "postgres" {
		store = repository.NewPostgresStore(pg.Pool)
	}

	switch cfg.Search.TaskBackend {
	case "redis":
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		probes["redis"] = rdb
		store.Tasks = repository.NewRedisTaskRepository(rdb.Client, cfg.Redis.KeyPrefix, redisTaskTTL)
	case "postgres":
		store.Tasks = repository.NewTaskRepository(pg.Pool)
	}
	logger.Info("storage selected",
		zap.String("store", cfg.App.StoreBackend),
		zap.String("tasks", cfg.Search.TaskBackend),
		zap.String("blobs", cfg.Storage.Backend))

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	registrars := []worker.HandlerRegistrar{service.NewNotificationService(dispatcher, logger)}
	if cfg.Events.NATSURL != "" {
		bus, err := events.ConnectBus(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer bus.Close()
		registrars = append(registrars, events.NewNATSForwarder(dispatcher, bus, cfg.Events.SubjectPrefix, logger))
	}
	worker.StartNotificationWorker(registrars...)

	clock := worker.RealClock()
	scheduler := worker.NewScheduler(clock, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   store.Tickets,
		CustomerRepo: store.Customers,
		CommentRepo:  store.Comments,
		HistoryRepo:  store.History,
		Dispatcher:   dispatcher,
		Clock:        clock,
		Logger:       logger,
	})
	fileService := service.NewFileService(service.FileDependencies{
		TicketRepo: store.Tickets,
		FileRepo:   store.Files,
		Blobs:      blobs,
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	})
	searchService := service.NewSearchService(service.SearchDependencies{
		TaskRepo:   store.Tasks,
		FileRepo:   store.Files,
		Scheduler:  scheduler,
		Delay:      cfg.Search.Delay,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, probes),
		Customers: handlers.NewCustomersHandler(service.NewCustomerService(store.Customers, clock)),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Files:     handlers.NewFilesHandler(fileService, searchService),
		Tasks:     handlers.NewTasksHandler(searchService),
		Authority: auth.NewAuthority(auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())),
		Metrics:   metrics,
	}
	if cfg.Storage.Backend == "disk" {
		routes.AssetsDir = cfg.Storage.Dir
	}
	httptransport.RegisterRoutes(app, routes)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := searchService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("search shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
	return nil
}
