package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ptm/ptm/internal/domain/patient"
	"github.com/ptm/ptm/internal/platform/db"
)

// testDB holds the shared database infrastructure for integration tests.
type testDB struct {
	Pool          *pgxpool.Pool
	ConnStr       string
	MigrationsDir string
}

// globalDB is the package-level test database, initialized once in TestMain.
var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	tdb, cleanup, err := setupPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup postgres container: %v\n", err)
		os.Exit(1)
	}

	globalDB = tdb
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupPostgres(ctx context.Context) (*testDB, func(), error) {
	migrationsDir := findMigrationsDir()

	connStr, cleanup, err := startPostgresContainer(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("start postgres container: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		cleanup()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	migrator := db.NewMigrator(pool, migrationsDir)
	if _, err := migrator.Up(ctx); err != nil {
		pool.Close()
		cleanup()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return &testDB{
			Pool:          pool,
			ConnStr:       connStr,
			MigrationsDir: migrationsDir,
		}, func() {
			pool.Close()
			cleanup()
		}, nil
}

// findMigrationsDir locates the migrations directory relative to this test file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	// test/integration -> repo root
	root := filepath.Join(dir, "..", "..")
	return filepath.Join(root, "migrations")
}

// resetTables empties both tables between tests so each test starts clean.
func resetTables(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := globalDB.Pool.Exec(ctx, `TRUNCATE patients RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("reset tables: %v", err)
	}
}

// newLoadedService builds a patient service over the test pool and loads the
// roster from the database.
func newLoadedService(t *testing.T, ctx context.Context) *patient.Service {
	t.Helper()
	svc := patient.NewService(
		patient.NewPatientRepoPG(globalDB.Pool),
		patient.NewTestRepoPG(globalDB.Pool),
	)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load roster: %v", err)
	}
	return svc
}

// seedPatient creates a patient through the service.
func seedPatient(t *testing.T, ctx context.Context, svc *patient.Service, name string) *patient.Patient {
	t.Helper()
	p, err := svc.AddPatient(ctx, name, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), "F")
	if err != nil {
		t.Fatalf("seed patient %s: %v", name, err)
	}
	return p
}

// seedTest creates a test through the service.
func seedTest(t *testing.T, ctx context.Context, svc *patient.Service, p *patient.Patient, name string, date time.Time, result float64, within bool) *patient.Test {
	t.Helper()
	created, err := svc.AddTest(ctx, p, name, date, result, within)
	if err != nil {
		t.Fatalf("seed test %s: %v", name, err)
	}
	return created
}
