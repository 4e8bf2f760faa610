package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/api"
	"github.com/dom/leaderboard-dashboard/internal/config"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/events"
	"github.com/dom/leaderboard-dashboard/internal/logging"
	"github.com/dom/leaderboard-dashboard/internal/metrics"
	"github.com/dom/leaderboard-dashboard/internal/querycache"
	"github.com/dom/leaderboard-dashboard/internal/repository/postgres"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/dom/leaderboard-dashboard/internal/websocket"
	"go.opentelemetry.io/otel"
)

const sessionPruneInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	repos := postgres.NewRepositories(db)

	m := metrics.New()

	cache, closeCache, err := openCache(ctx, cfg, logger, m)
	if err != nil {
		fatal(logger, "failed to open cache", err)
	}
	defer closeCache()

	bus, err := events.NewBus(logger, m.Registry)
	if err != nil {
		fatal(logger, "failed to create event bus", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run()
	bus.OnChange("websocket", hub.HandleChange)

	go func() {
		if err := bus.Run(ctx); err != nil {
			logger.Error("event bus stopped", "component", "events", "error", err)
		}
	}()
	<-bus.Running()

	source := datasource.New(repos, datasource.Options{
		Cache:    cache,
		Bus:      bus,
		Tracer:   otel.Tracer("github.com/dom/leaderboard-dashboard/datasource"),
		Metrics:  m,
		Logger:   logger,
		PageSize: cfg.EntriesPerPage,
	})

	services := service.NewServices(repos, cfg, logger)
	if err := services.Auth.EnsureAdmin(ctx); err != nil {
		fatal(logger, "failed to bootstrap admin", err)
	}
	go pruneSessions(ctx, services.Auth, logger)

	router := api.NewRouter(api.Deps{
		Services: services,
		Source:   source,
		Hub:      hub,
		Metrics:  m,
		Config:   cfg,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	hub.Stop()
	if err := bus.Close(); err != nil {
		logger.Warn("closing event bus", "error", err)
	}
	logger.Info("server stopped")
}

// openCache uses redis when REDIS_URL is set and an in-process store otherwise.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*querycache.Cache, func(), error) {
	if cfg.RedisURL == "" {
		logger.Info("using in-memory query cache", "component", "querycache")
		return querycache.New(querycache.NewMemoryStore(), cfg.CacheTTL, logger, m), func() {}, nil
	}

	client, err := querycache.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis query cache", "component", "querycache")
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing redis", "component", "querycache", "error", err)
		}
	}
	return querycache.New(querycache.NewRedisStore(client), cfg.CacheTTL, logger, m), closeFn, nil
}

func pruneSessions(ctx context.Context, auth *service.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := auth.PruneSessions(ctx); err != nil {
				logger.Warn("session prune failed", "component", "auth", "error", err)
			}
		}
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
