package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rajasatyajit/StatusAggregator/config"
	"github.com/rajasatyajit/StatusAggregator/internal/api"
	"github.com/rajasatyajit/StatusAggregator/internal/app"
	"github.com/rajasatyajit/StatusAggregator/internal/logger"
	"github.com/rajasatyajit/StatusAggregator/internal/metrics"
	middlewares "github.com/rajasatyajit/StatusAggregator/internal/middleware"
	"github.com/rajasatyajit/StatusAggregator/internal/ratelimit"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting StatusAggregator",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize", "error", err)
	}
	defer components.Close(context.Background())

	// Start the sync job in background
	go func() {
		if err := components.Pipeline.Run(ctx, cfg.Pipeline.SyncInterval); err != nil {
			logger.Error("Sync job error", "error", err)
		}
	}()

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = components.Limiter
	}

	handler := api.NewHandler(
		components.Store,
		components.Catalog,
		components.Resolver,
		components.Pipeline,
		cfg.Admin.AdminSecret,
		api.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
	)
	r := newRouter(cfg, handler, limiter)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// newRouter applies the global middleware stack and mounts the API
func newRouter(cfg *config.Config, h *api.Handler, limiter ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS(cfg.Server.CORSOrigins))
	r.Use(middlewares.RateLimit(limiter, cfg.RateLimit.RequestsPerMinute))

	h.RegisterRoutes(r)
	return r
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
