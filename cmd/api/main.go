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

	httptransport "github.com/spec-kit/supportops/internal/api/http"
	"github.com/spec-kit/supportops/internal/api/http/handlers"
	"github.com/spec-kit/supportops/internal/config"
	"github.com/spec-kit/supportops/internal/events"
	"github.com/spec-kit/supportops/internal/lifecycle"
	"github.com/spec-kit/supportops/internal/observability"
	"github.com/spec-kit/supportops/internal/persistence"
	"github.com/spec-kit/supportops/internal/realtime"
	"github.com/spec-kit/supportops/internal/repository"
	"github.com/spec-kit/supportops/internal/service"
	"github.com/spec-kit/supportops/internal/triage"
	"github.com/spec-kit/supportops/internal/worker"
	"github.com/spec-kit/supportops/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	ticketRepo := repository.NewMemoryTicketRepository()
	if cfg.App.SeedSampleTicket {
		service.SeedSampleTicket(ticketRepo, time.Now())
	}

	generator := triage.NewGenerator(cfg.AI)
	if generator == nil {
		logger.Info("ai triage disabled")
	}
	triager := triage.NewTriager(generator, cfg.AI.Timeout(), logger, metrics)

	dispatcher := events.NewInMemoryDispatcher()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Enricher:   triager,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	hub := realtime.NewHub(ticketService.ListTickets, cfg.Realtime.SendBuffer, logger)

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	var notifier realtime.Notifier = realtime.NewHubNotifier(hub)
	if redis.Enabled() {
		relay := realtime.NewRedisRelay(redis.Client, cfg.Redis.Channel, hub, logger)
		if err := relay.Start(ctx); err != nil {
			logger.Warn("redis relay unavailable, broadcasting locally only", zap.Error(err))
		} else {
			notifier = realtime.NewRedisNotifier(redis.Client, cfg.Redis.Channel, notifier, logger)
		}
	}

	worker.StartBroadcastWorker(dispatcher, notifier, logger)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Metrics:   handlers.NewMetricsHandler(metrics),
		Realtime:  realtime.Handler(hub, logger),
		StaticDir: cfg.App.StaticDir,
	})

	manager := lifecycle.New(cfg.App.ShutdownGrace(), logger)
	manager.OnShutdown("websocket", func(context.Context) error {
		hub.Close()
		return nil
	})
	manager.OnShutdown("http", app.ShutdownWithContext)
	manager.OnShutdown("redis", func(context.Context) error {
		cancel()
		redis.Close()
		return nil
	})

	util.SafeGo(logger, "http-listener", func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	if err := manager.Run(ctx, sigCh); err != nil {
		logger.Warn("shutdown finished with errors", zap.Error(err))
	}
}
