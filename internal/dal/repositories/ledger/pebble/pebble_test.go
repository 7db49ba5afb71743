package pebblerepo

import (
	"context"
	"testing"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/review"
)

func testOrder(id uint64, status order.Status) order.Order {
	return order.Order{
		ID:         id,
		Sender:     "0xsender",
		Recipient:  "0xrecipient",
		DistanceKm: 100,
		CargoType:  "fragile",
		Price:      500,
		Status:     status,
		CreatedAt:  1700000000,
	}
}

func TestJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	created := testOrder(0, order.StatusCreated)
	if err := repo.Persist(ctx, iledgerrepo.Commit{
		Order:  &created,
		Change: &orderchange.Change{OrderID: 0, Type: orderchange.TypeCreated, Timestamp: 1700000000},
	}); err != nil {
		t.Fatalf("persist creation: %v", err)
	}

	paid := testOrder(0, order.StatusPaid)
	paid.PaidAt = 1700000100
	paid.Escrowed = 500
	if err := repo.Persist(ctx, iledgerrepo.Commit{
		Order:  &paid,
		Change: &orderchange.Change{OrderID: 0, Type: orderchange.TypePaid, Timestamp: 1700000100},
	}); err != nil {
		t.Fatalf("persist payment: %v", err)
	}

	completed := testOrder(0, order.StatusCompleted)
	completed.PaidAt = 1700000100
	completed.CompletedAt = 1700000200
	completed.DeliveryDate = 1700000200
	balance := uint64(500)
	if err := repo.Persist(ctx, iledgerrepo.Commit{
		Order:           &completed,
		Change:          &orderchange.Change{OrderID: 0, Type: orderchange.TypeCompleted, Timestamp: 1700000200},
		Review:          &review.Review{ID: 0, OrderID: 0, Reviewer: "0xrecipient", Comment: "fast", Rating: 5, CreatedAt: 1700000200},
		TreasuryBalance: &balance,
	}); err != nil {
		t.Fatalf("persist completion: %v", err)
	}

	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen: recovery must replay the journal into the latest state.
	repo, err = NewRepository(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = repo.Close() }()

	state, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(state.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(state.Orders))
	}
	if state.Orders[0].Status != order.StatusCompleted {
		t.Fatalf("expected latest order state, got %s", state.Orders[0].Status)
	}
	if len(state.Changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(state.Changes))
	}
	if len(state.Reviews) != 1 || state.Reviews[0].Rating != 5 {
		t.Fatalf("unexpected reviews %+v", state.Reviews)
	}
	if state.TreasuryBalance != 500 {
		t.Fatalf("expected treasury 500, got %d", state.TreasuryBalance)
	}

	// New commits after recovery must not collide with old sequence numbers.
	second := testOrder(1, order.StatusCreated)
	if err := repo.Persist(ctx, iledgerrepo.Commit{
		Order:  &second,
		Change: &orderchange.Change{OrderID: 1, Type: orderchange.TypeCreated, Timestamp: 1700000300},
	}); err != nil {
		t.Fatalf("persist after recovery: %v", err)
	}

	state, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load after append: %v", err)
	}
	if len(state.Orders) != 2 || len(state.Changes) != 4 {
		t.Fatalf("expected 2 orders and 4 changes, got %d and %d", len(state.Orders), len(state.Changes))
	}
}

func TestLoadEmptyJournal(t *testing.T) {
	repo, err := NewRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer func() { _ = repo.Close() }()

	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Orders) != 0 || len(state.Reviews) != 0 || state.TreasuryBalance != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
}
