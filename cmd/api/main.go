package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rescue-report-service/internal/api/http"
	"github.com/spec-kit/rescue-report-service/internal/api/http/handlers"
	"github.com/spec-kit/rescue-report-service/internal/auth"
	"github.com/spec-kit/rescue-report-service/internal/classifier"
	"github.com/spec-kit/rescue-report-service/internal/config"
	"github.com/spec-kit/rescue-report-service/internal/events"
	"github.com/spec-kit/rescue-report-service/internal/intake"
	"github.com/spec-kit/rescue-report-service/internal/observability"
	"github.com/spec-kit/rescue-report-service/internal/persistence"
	"github.com/spec-kit/rescue-report-service/internal/repository"
	"github.com/spec-kit/rescue-report-service/internal/service"
	"github.com/spec-kit/rescue-report-service/internal/storage"
	"github.com/spec-kit/rescue-report-service/internal/worker"
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

	photoStore, err := storage.NewPhotoStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		logger.Fatal("failed to init photo store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	metrics := observability.NewMetrics()

	detector := classifier.NewCachedDetector(
		classifier.NewClient(cfg.Classifier),
		redis.Client,
		cfg.Classifier.CacheTTL(),
		logger,
	)
	validator := intake.NewValidator(detector, cfg.Classifier.MinConfidence, metrics)

	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, userRepo)
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo: reportRepo,
		Validator:  validator,
		PhotoStore: photoStore,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})
	adminService := service.NewAdminService(*cfg, service.AdminDependencies{
		UserRepo:   userRepo,
		ReportRepo: reportRepo,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.Uploads.MaxBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Reports:        handlers.NewReportsHandler(reportService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: authMiddleware,
		UploadsDir:     photoStore.Dir(),
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
