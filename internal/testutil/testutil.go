package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/gemrealm/internal/api"
	"github.com/dom/gemrealm/internal/clock"
	"github.com/dom/gemrealm/internal/config"
	"github.com/dom/gemrealm/internal/metrics"
	"github.com/dom/gemrealm/internal/repository"
	"github.com/dom/gemrealm/internal/repository/memory"
	repoPostgres "github.com/dom/gemrealm/internal/repository/postgres"
	"github.com/dom/gemrealm/internal/service"
	"github.com/prometheus/client_golang/prometheus"
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

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("test_gemrealm"),
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

	testDB := &TestDB{Container: container}
	t.Cleanup(testDB.Cleanup)

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

	testDB.DB = db
	testDB.DSN = dsn
	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		_ = tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"sessions", "accounts"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:          "0",
		Environment:   "test",
		SessionStore:  config.SessionStorePostgres,
		BcryptCost:    service.MinBcryptCost,
		LookupRetries: 0,
		LogFormat:     "text",
		LogLevel:      "error",
	}
}

// TestNow is the instant returned by TestClock.
var TestNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func TestClock() clock.FixedClock {
	return clock.FixedClock{T: TestNow}
}

// DiscardLogger drops all log output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRegistrationService wires a service over repos with a fast hasher and a
// fixed clock.
func NewRegistrationService(repos *repository.Repositories) *service.RegistrationService {
	return service.NewRegistrationService(repos.Account, repos.Session, service.RegistrationOptions{
		Hasher: NewFastHasher(),
		Clock:  TestClock(),
		Logger: DiscardLogger(),
	})
}

// TestServer holds all components for HTTP testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Registry *prometheus.Registry
	Config   *config.Config
}

// NewTestServer creates a test server over in-memory repositories
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithRepos(t, memory.NewRepositories(), TestConfig())
}

// NewTestServerWithRepos creates a test server over the given repositories
func NewTestServerWithRepos(t *testing.T, repos *repository.Repositories, cfg *config.Config) *TestServer {
	t.Helper()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := DiscardLogger()

	services := &service.Services{
		Registration: service.NewRegistrationService(repos.Account, repos.Session, service.RegistrationOptions{
			Hasher:  NewFastHasher(),
			Clock:   TestClock(),
			Logger:  log,
			Metrics: m,
		}),
	}
	router := api.NewRouter(services, cfg, log, registry)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Registry: registry,
		Config:   cfg,
	}
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}
