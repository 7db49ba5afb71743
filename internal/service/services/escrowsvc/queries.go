package escrowsvc

import (
	"context"

	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/rating"
	"github.com/shipledger/ledger/internal/service/models/review"
)

// Read operations go straight to the ledger store under its reader lock; they
// are side-effect-free and may run concurrently with each other. The context
// parameter keeps the signatures uniform with the write path for the
// transport layer; no query performs I/O.

// Order returns the order with the given id.
func (s *EscrowService) Order(_ context.Context, id uint64) (order.Order, error) {
	return s.store.Order(id)
}

// Orders returns all orders, id ascending.
func (s *EscrowService) Orders(_ context.Context) ([]order.Order, error) {
	return s.store.Orders(), nil
}

// OrderCount returns the number of orders ever created.
func (s *EscrowService) OrderCount(_ context.Context) (uint64, error) {
	return s.store.OrderCount(), nil
}

// OrderChanges returns the audit trail of one order in the exact order its
// transitions were committed.
func (s *EscrowService) OrderChanges(_ context.Context, id uint64) ([]orderchange.Change, error) {
	return s.store.ChangesByOrder(id)
}

// ReviewsByOrder returns the reviews bound to one order.
func (s *EscrowService) ReviewsByOrder(_ context.Context, id uint64) ([]review.Review, error) {
	return s.store.ReviewsByOrder(id)
}

// ReviewCount returns the number of reviews across all orders.
func (s *EscrowService) ReviewCount(_ context.Context) (uint64, error) {
	return s.store.ReviewCount(), nil
}

// AverageRating returns the running rating aggregate.
func (s *EscrowService) AverageRating(_ context.Context) (rating.Aggregate, error) {
	return s.store.Rating(), nil
}

// CompanyAddress returns the privileged withdrawal identity.
func (s *EscrowService) CompanyAddress(_ context.Context) (identity.Address, error) {
	return s.store.CompanyAddress(), nil
}

// TreasuryBalance returns the company's current withdrawable balance.
func (s *EscrowService) TreasuryBalance(_ context.Context) (uint64, error) {
	return s.store.TreasuryBalance(), nil
}
