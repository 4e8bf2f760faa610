package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/api"
	"github.com/dom/leaderboard-dashboard/internal/config"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/events"
	"github.com/dom/leaderboard-dashboard/internal/logging"
	"github.com/dom/leaderboard-dashboard/internal/metrics"
	"github.com/dom/leaderboard-dashboard/internal/querycache"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	repoPostgres "github.com/dom/leaderboard-dashboard/internal/repository/postgres"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/dom/leaderboard-dashboard/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB starts PostgreSQL in a container and applies the schema.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_leaderboard"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all user-owned tables. Categories are kept since Migrate seeds them.
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"api_usage_logs",
		"api_keys",
		"newsletter_subscriptions",
		"user_alerts",
		"user_model_selections",
		"bookmarks",
		"leaderboard_entries",
		"user_sessions",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Environment:        "test",
		LogLevel:           "error",
		CORSOrigins:        []string{"*"},
		CacheTTL:           time.Minute,
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		EntriesPerPage:     10,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Source   *datasource.Source
	Services *service.Services
	Hub      *websocket.Hub
	Bus      *events.Bus
	Config   *config.Config
}

// NewTestServer wires the full HTTP stack against a fresh database.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	log := logging.Discard()
	m := metrics.New()

	bus, err := events.NewBus(log, m.Registry)
	if err != nil {
		t.Fatalf("failed to create event bus: %v", err)
	}

	repos := repoPostgres.NewRepositories(testDB.DB)
	source := datasource.New(repos, datasource.Options{
		Cache:    querycache.New(querycache.NewMemoryStore(), cfg.CacheTTL, log, m),
		Bus:      bus,
		Metrics:  m,
		Logger:   log,
		PageSize: cfg.EntriesPerPage,
	})

	hub := websocket.NewHub(log)
	go hub.Run()
	bus.OnChange("websocket", hub.HandleChange)

	ctx, cancel := context.WithCancel(context.Background())
	go bus.Run(ctx)
	<-bus.Running()

	services := service.NewServices(repos, cfg, log)
	router := api.NewRouter(api.Deps{
		Services: services,
		Source:   source,
		Hub:      hub,
		Metrics:  m,
		Config:   cfg,
		Logger:   log,
	})

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Source:   source,
		Services: services,
		Hub:      hub,
		Bus:      bus,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		cancel()
		bus.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:]
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}
