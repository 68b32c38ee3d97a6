package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/praxis-hq/praxis/internal/app"
	"github.com/praxis-hq/praxis/internal/audit"
	"github.com/praxis-hq/praxis/internal/cache"
	"github.com/praxis-hq/praxis/internal/platform/db"
	"github.com/praxis-hq/praxis/internal/rbac"
	"github.com/praxis-hq/praxis/internal/shared"
	"github.com/praxis-hq/praxis/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "praxis_session", cfg.SessionTTL, cfg.IsProduction())
	identity := shared.SessionIdentityResolver{}

	auditLogger := audit.NewLogger(jobs.NewQueueAppender(asynqClient), logger)

	decisions := cache.New[bool](cfg.PermissionCacheTTL)
	roleRepo := rbac.NewRepository(dbpool)
	evaluator := rbac.NewEvaluator(roleRepo, decisions, cfg.PermissionCacheTTL, logger)
	roleService := rbac.NewService(roleRepo, evaluator, auditLogger, logger)
	gates := rbac.Middleware{Evaluator: evaluator, Identity: identity}
	rolesHandler := rbac.NewHandler(logger, roleService, identity, gates)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		RolesHandler:   rolesHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		decisions.Sweep(gctx, cfg.CacheSweepInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
