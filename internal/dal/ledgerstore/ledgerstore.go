// Package ledgerstore holds the authoritative in-memory ledger collections:
// orders, reviews, the append-only change log, the rating aggregate and the
// company treasury. It carries no business logic; the escrow service is its
// only writer. All methods copy data in and out, the collections themselves
// are never exposed.
package ledgerstore

import (
	"fmt"
	"sync"

	"github.com/shipledger/ledger/internal/dal/interfaces/iledgerrepo"
	"github.com/shipledger/ledger/internal/service/errs"
	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/rating"
	"github.com/shipledger/ledger/internal/service/models/review"
	"github.com/shipledger/ledger/internal/service/models/treasury"
)

// Store is the in-memory ledger state. Reads take the read lock and observe a
// consistent snapshot; every transition is applied under one write-lock
// section so no reader sees a partially applied commit.
type Store struct {
	mu       sync.RWMutex
	orders   []order.Order
	reviews  []review.Review
	changes  map[uint64][]orderchange.Change
	rating   rating.Aggregate
	treasury treasury.Treasury
}

// New creates an empty store owned by the given company address.
func New(company identity.Address) *Store {
	return &Store{
		changes:  make(map[uint64][]orderchange.Change),
		treasury: treasury.Treasury{Company: company},
	}
}

// NextOrderID returns the id the next created order will receive. Order ids
// are slice indices: monotonic from 0, never reused.
func (s *Store) NextOrderID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.orders))
}

// NextReviewID returns the id the next review will receive.
func (s *Store) NextReviewID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.reviews))
}

// CreateOrder inserts a freshly created order together with its audit record.
// The order id must equal NextOrderID; the escrow service serializes writers,
// so the check only guards against programming errors.
func (s *Store) CreateOrder(o order.Order, ch orderchange.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID != uint64(len(s.orders)) {
		return fmt.Errorf("order id %d out of sequence, want %d", o.ID, len(s.orders))
	}
	s.orders = append(s.orders, o)
	s.changes[o.ID] = append(s.changes[o.ID], ch)

	return nil
}

// ApplyTransition commits one state transition atomically: the updated order
// record, its audit entry, and optionally the review (with the rating
// aggregate) and a treasury credit produced by a completion.
func (s *Store) ApplyTransition(o order.Order, ch orderchange.Change, rev *review.Review, credit uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID >= uint64(len(s.orders)) {
		return fmt.Errorf("order %d: %w", o.ID, errs.ErrNotFound)
	}
	s.orders[o.ID] = o
	s.changes[o.ID] = append(s.changes[o.ID], ch)

	if rev != nil {
		s.reviews = append(s.reviews, *rev)
		s.rating.Add(rev.Rating)
	}
	if credit > 0 {
		s.treasury.Credit(credit)
	}

	return nil
}

// Order returns a copy of the order with the given id.
func (s *Store) Order(id uint64) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id >= uint64(len(s.orders)) {
		return order.Order{}, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	return s.orders[id], nil
}

// Orders returns all orders ordered by id ascending.
func (s *Store) Orders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// OrderCount returns the number of orders ever created.
func (s *Store) OrderCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.orders))
}

// ChangesByOrder returns the audit trail of one order in commit order.
func (s *Store) ChangesByOrder(id uint64) ([]orderchange.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id >= uint64(len(s.orders)) {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	changes := s.changes[id]
	out := make([]orderchange.Change, len(changes))
	copy(out, changes)
	return out, nil
}

// ReviewsByOrder returns the reviews bound to one order.
func (s *Store) ReviewsByOrder(id uint64) ([]review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id >= uint64(len(s.orders)) {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}
	out := make([]review.Review, 0, 1)
	for _, r := range s.reviews {
		if r.OrderID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

// ReviewCount returns the number of reviews across all orders.
func (s *Store) ReviewCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.reviews))
}

// Rating returns a copy of the running rating aggregate.
func (s *Store) Rating() rating.Aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rating
}

// CompanyAddress returns the privileged withdrawal identity.
func (s *Store) CompanyAddress() identity.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treasury.Company
}

// TreasuryBalance returns the company's withdrawable balance.
func (s *Store) TreasuryBalance() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treasury.Balance
}

// WithdrawTreasury drains the treasury, returning the prior balance. The
// second result is false when the balance was already zero.
func (s *Store) WithdrawTreasury() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.treasury.Balance == 0 {
		return 0, false
	}
	return s.treasury.WithdrawAll(), true
}

// Restore replaces the store contents with recovered state. Called once at
// startup before any traffic; the rating aggregate is recomputed from the
// reviews rather than trusted from disk.
func (s *Store) Restore(state *iledgerrepo.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range state.Orders {
		if o.ID != uint64(i) {
			return fmt.Errorf("recovered order id %d at position %d", o.ID, i)
		}
	}
	for i, r := range state.Reviews {
		if r.ID != uint64(i) {
			return fmt.Errorf("recovered review id %d at position %d", r.ID, i)
		}
	}

	s.orders = append([]order.Order(nil), state.Orders...)
	s.reviews = append([]review.Review(nil), state.Reviews...)
	s.changes = make(map[uint64][]orderchange.Change, len(state.Orders))
	for _, ch := range state.Changes {
		s.changes[ch.OrderID] = append(s.changes[ch.OrderID], ch)
	}

	s.rating = rating.Aggregate{}
	for _, r := range s.reviews {
		s.rating.Add(r.Rating)
	}
	s.treasury.Balance = state.TreasuryBalance

	return nil
}

// LastTimestamp returns the newest audit timestamp in the recovered log, used
// to keep the change log clock non-decreasing across restarts.
func (s *Store) LastTimestamp() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last int64
	for _, changes := range s.changes {
		for _, ch := range changes {
			if ch.Timestamp > last {
				last = ch.Timestamp
			}
		}
	}
	return last
}
