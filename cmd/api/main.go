package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ticketai/triage-service/internal/api/http"
	"github.com/ticketai/triage-service/internal/api/http/handlers"
	"github.com/ticketai/triage-service/internal/auth"
	"github.com/ticketai/triage-service/internal/classifier"
	"github.com/ticketai/triage-service/internal/config"
	"github.com/ticketai/triage-service/internal/events"
	"github.com/ticketai/triage-service/internal/notifier"
	"github.com/ticketai/triage-service/internal/observability"
	"github.com/ticketai/triage-service/internal/persistence"
	"github.com/ticketai/triage-service/internal/repository"
	"github.com/ticketai/triage-service/internal/service"
	"github.com/ticketai/triage-service/internal/worker"
	"github.com/ticketai/triage-service/internal/workflow"
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

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	mailer := notifier.NewSMTPMailer(cfg.Mailer, logger)
	triageClassifier := classifier.NewAnthropicClassifier(cfg.Classifier, logger)

	assignmentWorkflow := workflow.New(workflow.Dependencies{
		Tickets:           ticketRepo,
		Directory:         userRepo,
		Classifier:        triageClassifier,
		Notifier:          mailer,
		Locker:            workflow.NewRedisRunLocker(redis.Client, cfg.Workflow.RunLockTTL()),
		Dispatcher:        dispatcher,
		Logger:            logger,
		Metrics:           metrics,
		StepRetryAttempts: cfg.Workflow.StepRetryAttempts,
	})
	runner := worker.NewAssignmentRunner(assignmentWorkflow, cfg.Workflow.QueueSize, cfg.Workflow.Workers, logger)
	runner.BindDispatcher(dispatcher)
	runner.Start(ctx)
	defer runner.Stop()

	notificationService := service.NewNotificationService(dispatcher, mailer, logger)
	notificationService.RegisterHandlers()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
	})
	userService := service.NewUserService(userRepo)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
