package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lumen-ngo/lumen/database"
	"github.com/lumen-ngo/lumen/internal/app"
	"github.com/lumen-ngo/lumen/internal/audit"
	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/authz"
	"github.com/lumen-ngo/lumen/internal/bulk"
	"github.com/lumen-ngo/lumen/internal/content"
	"github.com/lumen-ngo/lumen/internal/observability"
	"github.com/lumen-ngo/lumen/internal/platform/cache"
	"github.com/lumen-ngo/lumen/internal/platform/db"
	"github.com/lumen-ngo/lumen/internal/roles"
	"github.com/lumen-ngo/lumen/internal/shared"
	"github.com/lumen-ngo/lumen/internal/storage"
	"github.com/lumen-ngo/lumen/internal/users"
	"github.com/lumen-ngo/lumen/jobs"
)

func newServeCmd() *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(app.LoadConfig)
			if err != nil {
				return err
			}
			if migrateFirst {
				if err := withMigrator(cfg.PGDSN, logger, database.Up); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	registry := roles.NewRegistry()
	catalog := content.NewCatalog()
	sessionManager := shared.NewSessionManager(redisClient, "lumen_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(pool)
	resolver := auth.NewResolver(authRepo, tokens)
	guard := authz.NewGuard(resolver, registry, logger, metrics)

	redisOpts := cfg.Redis().Asynq()
	jobsClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	executor := bulk.NewExecutor(catalog, bulk.NewPGStore(pool), logger,
		bulk.WithAuditor(auditLogger),
		bulk.WithRecorder(metrics),
		bulk.WithHook("users", users.DeactivationHook(jobsClient)),
	)

	authHandler := auth.NewHandler(logger, auth.NewService(authRepo, tokens), sessionManager, csrfManager, guard)
	usersService := users.NewService(users.NewRepository(pool), registry)

	var uploadHandler *storage.Handler
	if cfg.UploadsEnabled() {
		s3cfg := storage.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
			PathStyle:     cfg.S3ForcePathStyle,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
		}
		client, err := storage.NewS3Client(ctx, s3cfg)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		uploadHandler = storage.NewHandler(logger, storage.NewS3Uploader(client, s3cfg), guard, cfg.UploadMaxBytes)
	} else {
		logger.Info("uploads disabled, S3_BUCKET not set")
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		Catalog:        catalog,
		AuthHandler:    authHandler,
		AuditHandler:   audit.NewHandler(logger, audit.NewService(audit.NewRepository(pool)), guard),
		RolesHandler:   roles.NewHandler(logger, registry, guard),
		UsersHandler:   users.NewHandler(logger, usersService, guard),
		ContentHandler: content.NewHandler(logger, content.NewRepository(pool), guard),
		BulkHandler:    bulk.NewHandler(logger, executor, guard),
		UploadHandler:  uploadHandler,
		JobHandler:     jobs.NewHandler(inspector, guard, logger),
		Checks: map[string]app.Pinger{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
