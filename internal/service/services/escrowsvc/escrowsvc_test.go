package escrowsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/dal/ledgerstore"
	"github.com/shipledger/ledger/internal/events"
	"github.com/shipledger/ledger/internal/service/errs"
	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
)

const (
	company   = identity.Address("0xcompany")
	sender    = identity.Address("0xsender")
	recipient = identity.Address("0xrecipient")
	stranger  = identity.Address("0xstranger")
)

func newService(t *testing.T, opts ...option) *EscrowService {
	t.Helper()

	base := []option{
		WithStore(ledgerstore.New(company)),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	}
	return MustNewEscrowService(append(base, opts...)...)
}

func createOrder(t *testing.T, s *EscrowService) order.Order {
	t.Helper()

	o, err := s.CreateOrder(context.Background(), sender, recipient, 120, "fragile", 500)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func TestCreateOrderValidation(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	tests := []struct {
		name             string
		sender, receiver identity.Address
		distance         uint64
		cargo            string
		price            uint64
	}{
		{"missing sender", identity.Zero, recipient, 120, "fragile", 500},
		{"missing recipient", sender, identity.Zero, 120, "fragile", 500},
		{"self shipment", sender, sender, 120, "fragile", 500},
		{"self shipment different case", sender, identity.Address("0xSENDER"), 120, "fragile", 500},
		{"zero distance", sender, recipient, 0, "fragile", 500},
		{"blank cargo", sender, recipient, 120, "   ", 500},
		{"zero price", sender, recipient, 120, "fragile", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateOrder(ctx, tt.sender, tt.receiver, tt.distance, tt.cargo, tt.price)
			if !errors.Is(err, errs.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if count, _ := s.OrderCount(ctx); count != 0 {
		t.Fatalf("rejected orders must not be stored, got %d", count)
	}
}

func TestCreateOrderAssignsSequentialIDs(t *testing.T) {
	s := newService(t)

	first := createOrder(t, s)
	second := createOrder(t, s)

	if first.ID != 0 || second.ID != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", first.ID, second.ID)
	}
	if first.Status != order.StatusCreated {
		t.Fatalf("expected created status, got %s", first.Status)
	}
}

func TestPayForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown order", func(t *testing.T) {
		s := newService(t)
		if _, err := s.PayForOrder(ctx, sender, 42, 500); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("only the sender may pay", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, stranger, o.ID, 500); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("authorization outranks amount", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, stranger, o.ID, 1); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("amount must match exactly", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		for _, amount := range []uint64{499, 501} {
			if _, err := s.PayForOrder(ctx, sender, o.ID, amount); !errors.Is(err, errs.ErrInsufficientFunds) {
				t.Errorf("amount %d: expected ErrInsufficientFunds, got %v", amount, err)
			}
		}
	})

	t.Run("escrows the exact amount", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)

		paid, err := s.PayForOrder(ctx, sender, o.ID, 500)
		if err != nil {
			t.Fatalf("PayForOrder: %v", err)
		}
		if paid.Status != order.StatusPaid || paid.Escrowed != 500 {
			t.Fatalf("unexpected order after payment: %+v", paid)
		}
		if balance, _ := s.TreasuryBalance(ctx); balance != 0 {
			t.Fatalf("treasury must not be credited before completion, got %d", balance)
		}
	})

	t.Run("double payment rejected", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
			t.Fatalf("PayForOrder: %v", err)
		}
		if _, err := s.PayForOrder(ctx, sender, o.ID, 500); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("case-insensitive caller match", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, identity.Address("0xSeNdEr"), o.ID, 500); err != nil {
			t.Errorf("expected case-insensitive sender match, got %v", err)
		}
	})
}

func TestCompleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("only the recipient may complete", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.CompleteOrder(ctx, sender, o.ID, "fine", 5); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("unpaid order not completable", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.CompleteOrder(ctx, recipient, o.ID, "fine", 5); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("state outranks review validation", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.CompleteOrder(ctx, recipient, o.ID, "", 9); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("review validation", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
			t.Fatalf("PayForOrder: %v", err)
		}

		if _, err := s.CompleteOrder(ctx, recipient, o.ID, "   ", 5); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("blank comment: expected ErrInvalidInput, got %v", err)
		}
		for _, rating := range []int{0, 6, -1} {
			if _, err := s.CompleteOrder(ctx, recipient, o.ID, "fine", rating); !errors.Is(err, errs.ErrInvalidInput) {
				t.Errorf("rating %d: expected ErrInvalidInput, got %v", rating, err)
			}
		}
	})

	t.Run("releases escrow to treasury and records the review", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
			t.Fatalf("PayForOrder: %v", err)
		}

		rev, err := s.CompleteOrder(ctx, recipient, o.ID, "fast delivery", 4)
		if err != nil {
			t.Fatalf("CompleteOrder: %v", err)
		}
		if rev.ID != 0 || rev.OrderID != o.ID || rev.Rating != 4 {
			t.Fatalf("unexpected review %+v", rev)
		}

		completed, err := s.Order(ctx, o.ID)
		if err != nil {
			t.Fatalf("Order: %v", err)
		}
		if !completed.IsCompleted() || completed.Escrowed != 0 {
			t.Fatalf("unexpected order after completion: %+v", completed)
		}
		if completed.DeliveryDate == 0 {
			t.Fatalf("expected delivery date on completion")
		}

		if balance, _ := s.TreasuryBalance(ctx); balance != 500 {
			t.Fatalf("expected treasury 500, got %d", balance)
		}
		if agg, _ := s.AverageRating(ctx); agg.AverageHundredths() != 400 {
			t.Fatalf("expected average 400, got %d", agg.AverageHundredths())
		}
	})

	t.Run("terminal order not completable again", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
			t.Fatalf("PayForOrder: %v", err)
		}
		if _, err := s.CompleteOrder(ctx, recipient, o.ID, "fine", 5); err != nil {
			t.Fatalf("CompleteOrder: %v", err)
		}
		if _, err := s.CompleteOrder(ctx, recipient, o.ID, "again", 5); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("only the sender may cancel", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.CancelOrder(ctx, recipient, o.ID); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("unpaid cancellation refunds nothing", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)

		refunded, err := s.CancelOrder(ctx, sender, o.ID)
		if err != nil {
			t.Fatalf("CancelOrder: %v", err)
		}
		if refunded != 0 {
			t.Fatalf("expected zero refund, got %d", refunded)
		}
	})

	t.Run("paid cancellation refunds the escrow", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
			t.Fatalf("PayForOrder: %v", err)
		}

		refunded, err := s.CancelOrder(ctx, sender, o.ID)
		if err != nil {
			t.Fatalf("CancelOrder: %v", err)
		}
		if refunded != 500 {
			t.Fatalf("expected refund 500, got %d", refunded)
		}
		if balance, _ := s.TreasuryBalance(ctx); balance != 0 {
			t.Fatalf("refund must not touch the treasury, got %d", balance)
		}

		cancelled, _ := s.Order(ctx, o.ID)
		if !cancelled.IsCancelled() || cancelled.Escrowed != 0 {
			t.Fatalf("unexpected order after cancellation: %+v", cancelled)
		}
	})

	t.Run("terminal order not cancellable", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.CancelOrder(ctx, sender, o.ID); err != nil {
			t.Fatalf("CancelOrder: %v", err)
		}
		if _, err := s.CancelOrder(ctx, sender, o.ID); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestWithdrawCompanyFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("only the company may withdraw", func(t *testing.T) {
		s := newService(t)
		if _, err := s.WithdrawCompanyFunds(ctx, sender); !errors.Is(err, errs.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("empty treasury", func(t *testing.T) {
		s := newService(t)
		if _, err := s.WithdrawCompanyFunds(ctx, company); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("drains the full balance once", func(t *testing.T) {
		s := newService(t)
		o := createOrder(t, s)
		if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
			t.Fatalf("PayForOrder: %v", err)
		}
		if _, err := s.CompleteOrder(ctx, recipient, o.ID, "fine", 5); err != nil {
			t.Fatalf("CompleteOrder: %v", err)
		}

		amount, err := s.WithdrawCompanyFunds(ctx, company)
		if err != nil {
			t.Fatalf("WithdrawCompanyFunds: %v", err)
		}
		if amount != 500 {
			t.Fatalf("expected 500, got %d", amount)
		}
		if _, err := s.WithdrawCompanyFunds(ctx, company); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("second withdrawal: expected ErrInvalidState, got %v", err)
		}
	})
}

func TestAuditTrailWrittenOnlyOnSuccess(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	o := createOrder(t, s)

	// Failed attempts must leave no trace in the change log.
	_, _ = s.PayForOrder(ctx, stranger, o.ID, 500)
	_, _ = s.PayForOrder(ctx, sender, o.ID, 1)
	_, _ = s.CompleteOrder(ctx, recipient, o.ID, "fine", 5)

	changes, err := s.OrderChanges(ctx, o.ID)
	if err != nil {
		t.Fatalf("OrderChanges: %v", err)
	}
	if len(changes) != 1 || changes[0].Type != orderchange.TypeCreated {
		t.Fatalf("expected only the creation entry, got %+v", changes)
	}

	if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
		t.Fatalf("PayForOrder: %v", err)
	}
	changes, _ = s.OrderChanges(ctx, o.ID)
	if len(changes) != 2 || changes[1].Type != orderchange.TypePaid {
		t.Fatalf("expected creation and payment entries, got %+v", changes)
	}
}

func TestLifecycleEventOrdering(t *testing.T) {
	bus := events.NewBus(16)
	s := newService(t, WithBus(bus))
	ctx := context.Background()

	sub := bus.Subscribe()
	defer sub.Close()

	o := createOrder(t, s)
	if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
		t.Fatalf("PayForOrder: %v", err)
	}
	if _, err := s.CompleteOrder(ctx, recipient, o.ID, "fine", 5); err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}

	want := []events.Kind{
		events.KindOrderAdded,
		events.KindOrderPaid,
		events.KindOrderCompleted,
		events.KindReviewAdded,
	}
	for i, kind := range want {
		select {
		case e := <-sub.C:
			if e.Kind != kind {
				t.Fatalf("event %d: expected %s, got %s", i, kind, e.Kind)
			}
		default:
			t.Fatalf("event %d (%s) missing", i, kind)
		}
	}
}

type failingRepo struct{}

func (failingRepo) Persist(context.Context, iledgerrepo.Commit) error {
	return errors.New("disk full")
}
func (failingRepo) Load(context.Context) (*iledgerrepo.State, error) {
	return &iledgerrepo.State{}, nil
}
func (failingRepo) Close() error { return nil }

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	store := ledgerstore.New(company)
	working := newService(t, WithStore(store))
	ctx := context.Background()

	o := createOrder(t, working)

	failing := MustNewEscrowService(
		WithStore(store),
		WithRepository(failingRepo{}),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	)

	if _, err := failing.PayForOrder(ctx, sender, o.ID, 500); err == nil {
		t.Fatalf("expected persist failure to surface")
	}

	current, _ := working.Order(ctx, o.ID)
	if current.Status != order.StatusCreated || current.Escrowed != 0 {
		t.Fatalf("failed persist must not change state: %+v", current)
	}
	changes, _ := working.OrderChanges(ctx, o.ID)
	if len(changes) != 1 {
		t.Fatalf("failed persist must not append audit entries, got %d", len(changes))
	}
}

func TestTimestampsNeverDecrease(t *testing.T) {
	clock := time.Unix(1700000100, 0)
	s := MustNewEscrowService(
		WithStore(ledgerstore.New(company)),
		WithClock(func() time.Time { return clock }),
	)
	ctx := context.Background()

	o := createOrder(t, s)

	// Step the host clock backwards; the audit timestamp must hold.
	clock = time.Unix(1600000000, 0)
	if _, err := s.PayForOrder(ctx, sender, o.ID, 500); err != nil {
		t.Fatalf("PayForOrder: %v", err)
	}

	changes, _ := s.OrderChanges(ctx, o.ID)
	if len(changes) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(changes))
	}
	if changes[1].Timestamp < changes[0].Timestamp {
		t.Fatalf("timestamps decreased: %d then %d", changes[0].Timestamp, changes[1].Timestamp)
	}
}
