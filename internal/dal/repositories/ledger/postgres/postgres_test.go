//go:build integration

package postgresrepo

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/review"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("failed to set goose dialect: %v", err)
	}
	if err := goose.Up(db, migrationsDir()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close migration connection: %v", err)
	}

	return pool
}

func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	return filepath.Join(dir, "..", "..", "..", "..", "..", "migrations")
}

func TestPersistAndLoad(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool := setupPool(ctx, t)
	repo := NewRepository(pool)

	created := order.Order{
		ID:         0,
		Sender:     "0xsender",
		Recipient:  "0xrecipient",
		DistanceKm: 120,
		CargoType:  "fragile",
		Price:      500,
		Status:     order.StatusCreated,
		CreatedAt:  1700000000,
	}
	if err := repo.Persist(ctx, iledgerrepo.Commit{
		Order:  &created,
		Change: &orderchange.Change{OrderID: 0, Type: orderchange.TypeCreated, Timestamp: 1700000000, Details: "created"},
	}); err != nil {
		t.Fatalf("persist creation: %v", err)
	}

	completed := created
	completed.Status = order.StatusCompleted
	completed.PaidAt = 1700000100
	completed.CompletedAt = 1700000200
	completed.DeliveryDate = 1700000200
	balance := uint64(500)
	if err := repo.Persist(ctx, iledgerrepo.Commit{
		Order:           &completed,
		Change:          &orderchange.Change{OrderID: 0, Type: orderchange.TypeCompleted, Timestamp: 1700000200, Details: "completed"},
		Review:          &review.Review{ID: 0, OrderID: 0, Reviewer: "0xrecipient", Comment: "fast", Rating: 5, CreatedAt: 1700000200},
		TreasuryBalance: &balance,
	}); err != nil {
		t.Fatalf("persist completion: %v", err)
	}

	state, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(state.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(state.Orders))
	}
	got := state.Orders[0]
	if got.Status != order.StatusCompleted || got.PaidAt != 1700000100 || got.DeliveryDate != 1700000200 {
		t.Fatalf("order not upserted to latest state: %+v", got)
	}

	if len(state.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(state.Changes))
	}
	if state.Changes[0].Type != orderchange.TypeCreated || state.Changes[1].Type != orderchange.TypeCompleted {
		t.Fatalf("changes out of commit order: %+v", state.Changes)
	}

	if len(state.Reviews) != 1 || state.Reviews[0].Rating != 5 {
		t.Fatalf("unexpected reviews: %+v", state.Reviews)
	}
	if state.TreasuryBalance != 500 {
		t.Fatalf("expected treasury 500, got %d", state.TreasuryBalance)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool := setupPool(ctx, t)
	repo := NewRepository(pool)

	state, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Orders) != 0 || len(state.Reviews) != 0 || len(state.Changes) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
	if state.TreasuryBalance != 0 {
		t.Fatalf("expected zero treasury, got %d", state.TreasuryBalance)
	}
}
