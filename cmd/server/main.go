package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/telecomplus/contracts-backend/internal/cache"
	"github.com/telecomplus/contracts-backend/internal/handler"
	"github.com/telecomplus/contracts-backend/internal/infrastructure/logger"
	"github.com/telecomplus/contracts-backend/internal/infrastructure/redis"
	"github.com/telecomplus/contracts-backend/internal/observability/metrics"
	"github.com/telecomplus/contracts-backend/internal/observability/tracing"
	"github.com/telecomplus/contracts-backend/internal/repository"
	"github.com/telecomplus/contracts-backend/internal/security/audit"
	"github.com/telecomplus/contracts-backend/internal/security/auth"
	"github.com/telecomplus/contracts-backend/internal/security/middleware"
	"github.com/telecomplus/contracts-backend/internal/security/ratelimit"
	"github.com/telecomplus/contracts-backend/internal/service"
	"github.com/telecomplus/contracts-backend/pkg/config"
	"github.com/telecomplus/contracts-backend/pkg/database"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting server",
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log, cfg.AppName, cfg.AppVersion, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Redis is optional: without it stats are recomputed on every request.
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, stats caching disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	serviceRepo := repository.NewPostgresServiceRepository(db, log)
	contractRepo := repository.NewPostgresContractRepository(db, log)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AppName, cfg.JWTExpiresIn)
	statsCache := cache.NewStatsCache(redisClient, cfg.StatsCacheTTL, log)
	auditLog := audit.NewLogger(log)

	authService := service.NewAuthService(userRepo, tokenManager, cfg.BcryptCost, log)
	catalogService := service.NewCatalogService(serviceRepo, contractRepo, log)
	contractService := service.NewContractService(contractRepo, userRepo, serviceRepo, statsCache, log)

	authHandler := handler.NewAuthHandler(authService, auditLog, log)
	serviceHandler := handler.NewServiceHandler(catalogService, auditLog, log)
	contractHandler := handler.NewContractHandler(contractService, auditLog, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, cfg.AppName, cfg.AppVersion, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", healthHandler.Root)
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/profile", authHandler.Profile)
	mux.HandleFunc("PUT /api/auth/profile", authHandler.UpdateProfile)
	mux.HandleFunc("PUT /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	mux.HandleFunc("POST /api/services", serviceHandler.Create)
	mux.HandleFunc("GET /api/services", serviceHandler.List)
	mux.HandleFunc("GET /api/services/{id}", serviceHandler.GetByID)
	mux.HandleFunc("PUT /api/services/{id}", serviceHandler.Update)
	mux.HandleFunc("DELETE /api/services/{id}", serviceHandler.Delete)

	mux.HandleFunc("POST /api/contracts", contractHandler.Create)
	mux.HandleFunc("GET /api/contracts", contractHandler.List)
	mux.HandleFunc("GET /api/contracts/stats", contractHandler.Stats)
	mux.HandleFunc("GET /api/contracts/{id}", contractHandler.GetByID)
	mux.HandleFunc("PUT /api/contracts/{id}", contractHandler.Update)
	mux.HandleFunc("DELETE /api/contracts/{id}", contractHandler.Delete)

	limiter := ratelimit.NewLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	defer limiter.Stop()

	var root http.Handler = mux
	root = middleware.RateLimitMiddleware(limiter, log)(root)
	root = middleware.Authenticate(tokenManager, userRepo, log)(root)
	root = middleware.CORS(cfg.CORSAllowedOrigins)(root)
	root = otelhttp.NewHandler(root, "http.server")
	root = metrics.HTTPMetricsMiddleware(root)
	root = middleware.RequestID(root)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.Int("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
