// Package testutil provides shared test infrastructure: a disposable
// PostgreSQL instance with the pgvector extension and the project schema
// applied.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// TestDB wraps a PostgreSQL test container with a ready connection pool.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a pgvector-enabled PostgreSQL container, applies all
// migrations, and returns a pool with vector types registered. The test is
// skipped when no container runtime is available. Cleanup is registered on t.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	var pgContainer *postgres.PostgresContainer
	var err error
	func() {
		// testcontainers-go panics (rather than returning an error) when no
		// container runtime is present; fold that into the skip path below.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("container runtime unavailable: %v", r)
			}
		}()
		pgContainer, err = postgres.Run(ctx,
			"pgvector/pgvector:pg16",
			postgres.WithDatabase("coachx_test"),
			postgres.WithUsername("coachx_test"),
			postgres.WithPassword("test_password"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("skipping: could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Migrations run over a plain connection: the vector extension must
	// exist before pgvector type registration can succeed on pool connects.
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := runMigrations(ctx, conn); err != nil {
		_ = conn.Close(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}
	_ = conn.Close(ctx)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, c)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	return &TestDB{Container: pgContainer, Pool: pool, ConnStr: connStr}
}

// runMigrations applies every up migration under db/migrations in order.
func runMigrations(ctx context.Context, conn *pgx.Conn) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	dir := filepath.Join(root, "db", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	for _, path := range files {
		sql, err := os.ReadFile(path) // #nosec G304 -- paths come from the repo tree
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", path, err)
		}
		if _, err := conn.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("applying migration %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// findProjectRoot walks up from this file until it finds go.mod, so tests can
// locate migrations regardless of working directory.
func findProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get current file path")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (go.mod)")
		}
		dir = parent
	}
}
