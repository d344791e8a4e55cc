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

	"ceartscore-platform/internal/audit"
	"ceartscore-platform/internal/auth"
	"ceartscore-platform/internal/config"
	"ceartscore-platform/internal/copilot"
	"ceartscore-platform/internal/httpapi"
	"ceartscore-platform/internal/ratelimit"
	"ceartscore-platform/internal/scoring"
	"ceartscore-platform/internal/uploads"
	"ceartscore-platform/pkg/logger"
	"ceartscore-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	policy := cfg.ValidationPolicy()
	if !policy.Enforce {
		log.Warn("token validation is NOT enforced", "env", policy.Environment)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var limiter ratelimit.Limiter
	switch cfg.Auth.RateLimitBackend {
	case "redis":
		limiter, err = ratelimit.NewRedisLimiter(rdb, cfg.Auth.RateLimitAttempts, cfg.Auth.RateLimitWindow)
		if err != nil {
			log.Error("rate limiter init failed", "err", err)
			os.Exit(1)
		}
	default:
		mem := ratelimit.NewMemoryLimiter(log,
			ratelimit.WithMaxAttempts(cfg.Auth.RateLimitAttempts),
			ratelimit.WithWindow(cfg.Auth.RateLimitWindow),
			ratelimit.WithMaxStoreSize(cfg.Auth.RateLimitMaxStore),
		)
		mem.StartCleanup(rootCtx, cfg.Auth.CleanupInterval)
		limiter = mem
	}

	copilotCfg := copilot.Config{
		APIKey:  cfg.Copilot.APIKey,
		BaseURL: cfg.Copilot.BaseURL,
		Timeout: cfg.Copilot.Timeout,
	}

	var introspector auth.Introspector
	if policy.Enforce {
		introspector = copilot.NewIntrospector(copilotCfg)
	} else {
		introspector = copilot.UnverifiedIntrospector{}
	}

	validator := auth.NewValidator(introspector,
		auth.WithLimiter(limiter),
		auth.WithMaxTokenAge(cfg.Auth.MaxTokenAge),
		auth.WithLogger(log),
	)

	auditSvc := audit.NewService(audit.NewMemoryRepo())

	authz := auth.Authorizer{
		Validator: validator,
		Policy:    policy,
		Factory: func(token string) (auth.WorkspaceClient, error) {
			return copilot.NewClient(copilotCfg, token), nil
		},
		Audit: auditSvc,
		Log:   log,
	}

	handlers := httpapi.Handlers{
		Uploads: uploads.NewPostgresRepo(db),
		Filter:  uploads.NewFilter(cfg.Upload.MaxBytes),
		Scoring: scoring.NewService(scoring.NewMemoryRepo()),
		Audit:   auditSvc,
		Log:     log,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, authz, handlers)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
