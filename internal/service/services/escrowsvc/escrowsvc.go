// Package escrowsvc implements the order escrow engine: the state machine
// over delivery orders, custody of escrowed funds and the only write path
// into the ledger store. Every mutating call runs under one global lock, so
// the history of state-changing calls is serializable; failures are returned
// synchronously and never retried internally.
package escrowsvc

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/dal/ledgerstore"
	"github.com/shipledger/ledger/internal/events"
	"github.com/shipledger/ledger/internal/service/errs"
	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/review"
)

// EscrowService owns all order, review, treasury and audit state. The single
// mutex serializes create/pay/complete/cancel/withdraw; a per-order lock
// would not do because withdrawal and the rating aggregate span orders.
type EscrowService struct {
	mu     sync.Mutex
	store  *ledgerstore.Store
	repo   iledgerrepo.Repository
	bus    *events.Bus
	now    func() time.Time
	lastTs int64
}

// option is a function that configures the EscrowService.
type option func(*EscrowService)

// MustNewEscrowService creates a new EscrowService. The store is mandatory;
// repository and bus default to no-ops so tests can wire only what they need.
func MustNewEscrowService(opts ...option) *EscrowService {
	s := &EscrowService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		panic("escrowsvc: ledger store is required")
	}
	if s.repo == nil {
		s.repo = iledgerrepo.Noop()
	}
	if s.bus == nil {
		s.bus = events.NewBus(0)
	}
	s.lastTs = s.store.LastTimestamp()

	return s
}

// WithStore sets the ledger store for the EscrowService.
func WithStore(store *ledgerstore.Store) option {
	return func(s *EscrowService) {
		s.store = store
	}
}

// WithRepository sets the durable ledger repository.
func WithRepository(repo iledgerrepo.Repository) option {
	return func(s *EscrowService) {
		s.repo = repo
	}
}

// WithBus sets the lifecycle event bus.
func WithBus(bus *events.Bus) option {
	return func(s *EscrowService) {
		s.bus = bus
	}
}

// WithClock overrides the wall-clock source.
func WithClock(now func() time.Time) option {
	return func(s *EscrowService) {
		s.now = now
	}
}

// Bus returns the lifecycle event bus for subscribers.
func (s *EscrowService) Bus() *events.Bus {
	return s.bus
}

// tick returns the commit time, clamped so audit timestamps never decrease
// even if the host clock steps backwards. Callers hold s.mu.
func (s *EscrowService) tick() time.Time {
	ts := s.now().Unix()
	if ts < s.lastTs {
		ts = s.lastTs
	}
	s.lastTs = ts
	return time.Unix(ts, 0)
}

// CreateOrder validates the order parameters, allocates the next id and
// stores the order in the created state.
func (s *EscrowService) CreateOrder(
	ctx context.Context,
	sender, recipient identity.Address,
	distanceKm uint64,
	cargoType string,
	price uint64,
) (order.Order, error) {
	cargoType = strings.TrimSpace(cargoType)

	switch {
	case sender.IsZero():
		return order.Order{}, fmt.Errorf("sender is required: %w", errs.ErrInvalidInput)
	case recipient.IsZero():
		return order.Order{}, fmt.Errorf("recipient is required: %w", errs.ErrInvalidInput)
	case recipient.Equal(sender):
		return order.Order{}, fmt.Errorf("recipient must differ from sender: %w", errs.ErrInvalidInput)
	case distanceKm == 0:
		return order.Order{}, fmt.Errorf("distance must be positive: %w", errs.ErrInvalidInput)
	case cargoType == "":
		return order.Order{}, fmt.Errorf("cargo type is required: %w", errs.ErrInvalidInput)
	case price == 0:
		return order.Order{}, fmt.Errorf("price must be positive: %w", errs.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.tick()
	o := order.Order{
		ID:         s.store.NextOrderID(),
		Sender:     sender,
		Recipient:  recipient,
		DistanceKm: distanceKm,
		CargoType:  cargoType,
		Price:      price,
		Status:     order.StatusCreated,
		CreatedAt:  now.Unix(),
	}
	ch := orderchange.Change{
		OrderID:   o.ID,
		Type:      orderchange.TypeCreated,
		Timestamp: now.Unix(),
		Details:   fmt.Sprintf("order created by %s for %s", sender, recipient),
	}

	if err := s.repo.Persist(ctx, iledgerrepo.Commit{Order: &o, Change: &ch}); err != nil {
		return order.Order{}, fmt.Errorf("persist order %d: %w", o.ID, err)
	}
	if err := s.store.CreateOrder(o, ch); err != nil {
		return order.Order{}, err
	}

	s.bus.Publish(events.Event{
		Kind:      events.KindOrderAdded,
		Timestamp: now.Unix(),
		Payload: events.OrderAdded{
			OrderID:    o.ID,
			Sender:     o.Sender,
			Recipient:  o.Recipient,
			DistanceKm: o.DistanceKm,
			CargoType:  o.CargoType,
			Price:      o.Price,
		},
	})

	return o, nil
}

// PayForOrder escrows the attached amount against the order. The amount must
// exactly match the order price; this is an escrow, not a minimum.
func (s *EscrowService) PayForOrder(
	ctx context.Context,
	caller identity.Address,
	orderID uint64,
	amount uint64,
) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.store.Order(orderID)
	if err != nil {
		return order.Order{}, err
	}
	if !caller.Equal(o.Sender) {
		return order.Order{}, fmt.Errorf("only the sender may pay for order %d: %w", orderID, errs.ErrUnauthorized)
	}
	if o.IsPaid() || o.IsTerminal() {
		return order.Order{}, fmt.Errorf("order %d is not payable in state %s: %w", orderID, o.Status, errs.ErrInvalidState)
	}
	if amount != o.Price {
		return order.Order{}, fmt.Errorf("attached %d, order price is %d: %w", amount, o.Price, errs.ErrInsufficientFunds)
	}

	now := s.tick()
	o.ApplyTransition(order.StatusPaid, now)
	o.Escrowed = amount
	ch := orderchange.Change{
		OrderID:   o.ID,
		Type:      orderchange.TypePaid,
		Timestamp: now.Unix(),
		Details:   fmt.Sprintf("escrowed %d from %s", amount, caller),
	}

	if err := s.repo.Persist(ctx, iledgerrepo.Commit{Order: &o, Change: &ch}); err != nil {
		return order.Order{}, fmt.Errorf("persist payment for order %d: %w", o.ID, err)
	}
	if err := s.store.ApplyTransition(o, ch, nil, 0); err != nil {
		return order.Order{}, err
	}

	s.bus.Publish(events.Event{
		Kind:      events.KindOrderPaid,
		Timestamp: now.Unix(),
		Payload:   events.OrderPaid{OrderID: o.ID, Amount: amount},
	})

	return o, nil
}

// CompleteOrder confirms delivery: the recipient's review is recorded, the
// order becomes terminal and the escrowed funds are released to the company
// treasury. OrderCompleted is published before ReviewAdded; completion is the
// triggering fact.
func (s *EscrowService) CompleteOrder(
	ctx context.Context,
	caller identity.Address,
	orderID uint64,
	comment string,
	ratingValue int,
) (review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.store.Order(orderID)
	if err != nil {
		return review.Review{}, err
	}
	if !caller.Equal(o.Recipient) {
		return review.Review{}, fmt.Errorf("only the recipient may complete order %d: %w", orderID, errs.ErrUnauthorized)
	}
	if !o.IsPaid() || o.IsTerminal() {
		return review.Review{}, fmt.Errorf("order %d is not completable in state %s: %w", orderID, o.Status, errs.ErrInvalidState)
	}

	comment = strings.TrimSpace(comment)
	if comment == "" {
		return review.Review{}, fmt.Errorf("review comment is required: %w", errs.ErrInvalidInput)
	}
	if !review.ValidRating(ratingValue) {
		return review.Review{}, fmt.Errorf("rating %d outside %d..%d: %w",
			ratingValue, review.MinRating, review.MaxRating, errs.ErrInvalidInput)
	}

	now := s.tick()
	released := o.Escrowed
	o.ApplyTransition(order.StatusCompleted, now)
	o.Escrowed = 0

	rev := review.Review{
		ID:        s.store.NextReviewID(),
		OrderID:   o.ID,
		Reviewer:  caller,
		Comment:   comment,
		Rating:    uint8(ratingValue),
		CreatedAt: now.Unix(),
	}
	ch := orderchange.Change{
		OrderID:   o.ID,
		Type:      orderchange.TypeCompleted,
		Timestamp: now.Unix(),
		Details:   fmt.Sprintf("delivery confirmed by %s, released %d to treasury", caller, released),
	}

	newBalance := s.store.TreasuryBalance() + released
	commit := iledgerrepo.Commit{
		Order:           &o,
		Change:          &ch,
		Review:          &rev,
		TreasuryBalance: &newBalance,
	}
	if err := s.repo.Persist(ctx, commit); err != nil {
		return review.Review{}, fmt.Errorf("persist completion of order %d: %w", o.ID, err)
	}
	if err := s.store.ApplyTransition(o, ch, &rev, released); err != nil {
		return review.Review{}, err
	}

	s.bus.Publish(events.Event{
		Kind:      events.KindOrderCompleted,
		Timestamp: now.Unix(),
		Payload:   events.OrderCompleted{OrderID: o.ID, ReviewID: rev.ID, Released: released},
	})
	s.bus.Publish(events.Event{
		Kind:      events.KindReviewAdded,
		Timestamp: now.Unix(),
		Payload: events.ReviewAdded{
			ReviewID: rev.ID,
			OrderID:  o.ID,
			Reviewer: rev.Reviewer,
			Rating:   rev.Rating,
		},
	})

	return rev, nil
}

// CancelOrder cancels a non-terminal order. A paid order is refunded: the
// escrowed amount goes back to the sender, the treasury is untouched since it
// is only credited at completion. Returns the refunded amount, 0 for an
// unpaid order.
func (s *EscrowService) CancelOrder(
	ctx context.Context,
	caller identity.Address,
	orderID uint64,
) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.store.Order(orderID)
	if err != nil {
		return 0, err
	}
	if !caller.Equal(o.Sender) {
		return 0, fmt.Errorf("only the sender may cancel order %d: %w", orderID, errs.ErrUnauthorized)
	}
	if o.IsTerminal() {
		return 0, fmt.Errorf("order %d is already %s: %w", orderID, o.Status, errs.ErrInvalidState)
	}

	now := s.tick()
	refunded := o.Escrowed
	o.ApplyTransition(order.StatusCancelled, now)
	o.Escrowed = 0

	details := fmt.Sprintf("cancelled by %s", caller)
	if refunded > 0 {
		details = fmt.Sprintf("cancelled by %s, refunded %d to sender", caller, refunded)
	}
	ch := orderchange.Change{
		OrderID:   o.ID,
		Type:      orderchange.TypeCancelled,
		Timestamp: now.Unix(),
		Details:   details,
	}

	if err := s.repo.Persist(ctx, iledgerrepo.Commit{Order: &o, Change: &ch}); err != nil {
		return 0, fmt.Errorf("persist cancellation of order %d: %w", o.ID, err)
	}
	if err := s.store.ApplyTransition(o, ch, nil, 0); err != nil {
		return 0, err
	}

	s.bus.Publish(events.Event{
		Kind:      events.KindOrderCancelled,
		Timestamp: now.Unix(),
		Payload:   events.OrderCancelled{OrderID: o.ID, Refunded: refunded},
	})

	return refunded, nil
}

// WithdrawCompanyFunds transfers the entire treasury balance to the company.
// Withdrawing a zero balance fails with ErrInvalidState rather than
// succeeding as a no-op, so the caller learns there was nothing to collect.
func (s *EscrowService) WithdrawCompanyFunds(
	ctx context.Context,
	caller identity.Address,
) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.CompanyAddress().Equal(caller) {
		return 0, fmt.Errorf("only the company may withdraw: %w", errs.ErrUnauthorized)
	}

	balance := s.store.TreasuryBalance()
	if balance == 0 {
		return 0, fmt.Errorf("treasury is empty: %w", errs.ErrInvalidState)
	}

	var zero uint64
	if err := s.repo.Persist(ctx, iledgerrepo.Commit{TreasuryBalance: &zero}); err != nil {
		return 0, fmt.Errorf("persist withdrawal: %w", err)
	}
	amount, ok := s.store.WithdrawTreasury()
	if !ok {
		return 0, fmt.Errorf("treasury is empty: %w", errs.ErrInvalidState)
	}

	return amount, nil
}
