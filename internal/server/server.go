package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	v1 "github.com/chimbuka/mabuku/api/handler/v1"
	"github.com/chimbuka/mabuku/internal/queue"
	"github.com/chimbuka/mabuku/internal/store/postgres"
	"github.com/chimbuka/mabuku/jobs"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/log"
	"github.com/chimbuka/mabuku/plugins/notifiers"
)

// RunServer starts the REST API and the queue worker, blocking until
// SIGINT or SIGTERM.
func RunServer(config Config) error {
	logger := log.NewCtxLogger(config.LogLevel, []string{
		audit.ContextKeyOrganizationID,
		audit.ContextKeyActorID,
	})

	notifier, err := notifiers.NewClient(&config.Notifier, logger)
	if err != nil {
		return fmt.Errorf("initializing notifier: %w", err)
	}

	queueClient := queue.NewClient(config.Queue)

	services, err := InitServices(ServiceDeps{
		Config:    &config,
		Logger:    logger,
		Validator: validator.New(),
		Notifier:  notifier,
		Queue:     queueClient,
	})
	if err != nil {
		return fmt.Errorf("initializing services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobHandler := jobs.NewHandler(
		logger,
		services.InventoryService,
		services.ApprovalService,
		services.CategorizationService,
		services.UserService,
		notifier,
	)
	worker := queue.NewWorker(queueClient, logger)
	jobHandler.RegisterQueueHandlers(worker)

	if logger.Level() != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := v1.NewHandler(v1.HandlerDeps{
		ApprovalRuleService:   services.ApprovalRuleService,
		ApprovalService:       services.ApprovalService,
		CategoryService:       services.CategoryService,
		CategorizationService: services.CategorizationService,
		ExpenseService:        services.ExpenseService,
		TransactionService:    services.TransactionService,
		InvoiceService:        services.InvoiceService,
		InventoryService:      services.InventoryService,
		UserService:           services.UserService,
		AuditLogRepository:    services.AuditLogRepository,
		Logger:                logger,
	})
	handler.Register(router.Group("/api/v1", authMiddleware(config.Auth)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: router,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("queue worker stopped: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		logger.Info(ctx, "server starting", "port", config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Migrate applies pending database migrations.
func Migrate(config Config) error {
	store, err := postgres.NewClient(config.DB)
	if err != nil {
		return fmt.Errorf("initializing postgres client: %w", err)
	}
	defer store.Close()
	return store.Migrate()
}

func requestLogger(logger log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
