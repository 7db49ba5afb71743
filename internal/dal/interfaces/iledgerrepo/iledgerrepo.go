// Package iledgerrepo defines the durable persistence contract for the
// ledger. A commit is persisted write-ahead, before the in-memory state is
// updated, and the full state is reloadable on restart with the same
// invariants intact.
package iledgerrepo

import (
	"context"

	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/review"
)

// Commit is one atomic unit of durable state change. Nil fields are absent:
// a withdrawal carries only TreasuryBalance, an order creation carries Order
// and Change, a completion carries all four.
type Commit struct {
	Order           *order.Order       `json:"order,omitempty"`
	Change          *orderchange.Change `json:"change,omitempty"`
	Review          *review.Review     `json:"review,omitempty"`
	TreasuryBalance *uint64            `json:"treasuryBalance,omitempty"`
}

// State is the recoverable ledger state. Orders are ordered by id, Changes
// chronologically across the whole log.
type State struct {
	Orders          []order.Order
	Reviews         []review.Review
	Changes         []orderchange.Change
	TreasuryBalance uint64
}

// Repository persists ledger commits and reloads state after restart.
type Repository interface {
	Persist(ctx context.Context, c Commit) error
	Load(ctx context.Context) (*State, error)
	Close() error
}
