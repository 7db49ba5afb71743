// Package events carries the ledger lifecycle event feed: typed payloads per
// event kind and an in-process bus decoupling the commit path from listener
// execution.
package events

import (
	"fmt"

	"github.com/shipledger/ledger/internal/service/errs"
	"github.com/shipledger/ledger/internal/service/models/identity"
)

// Kind identifies a lifecycle event stream.
type Kind string

const (
	KindOrderAdded     Kind = "orderAdded"
	KindOrderPaid      Kind = "orderPaid"
	KindOrderCompleted Kind = "orderCompleted"
	KindOrderCancelled Kind = "orderCancelled"
	KindReviewAdded    Kind = "reviewAdded"
)

// AllKinds returns every lifecycle event kind.
func AllKinds() []Kind {
	return []Kind{
		KindOrderAdded,
		KindOrderPaid,
		KindOrderCompleted,
		KindOrderCancelled,
		KindReviewAdded,
	}
}

// ParseKind validates a kind supplied by an external subscriber.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOrderAdded, KindOrderPaid, KindOrderCompleted, KindOrderCancelled, KindReviewAdded:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown event kind %q: %w", s, errs.ErrInvalidInput)
	}
}

// Event is one published lifecycle event. Timestamp is the commit time in
// unix seconds; Payload is the kind-specific struct below.
type Event struct {
	Kind      Kind  `json:"kind"`
	Timestamp int64 `json:"timestamp"`
	Payload   any   `json:"payload"`
}

// OrderAdded is published when an order is created.
type OrderAdded struct {
	OrderID    uint64           `json:"orderId"`
	Sender     identity.Address `json:"sender"`
	Recipient  identity.Address `json:"recipient"`
	DistanceKm uint64           `json:"distanceKm"`
	CargoType  string           `json:"cargoType"`
	Price      uint64           `json:"price"`
}

// OrderPaid is published when the sender escrows the order price.
type OrderPaid struct {
	OrderID uint64 `json:"orderId"`
	Amount  uint64 `json:"amount"`
}

// OrderCompleted is published when the recipient confirms delivery. Released
// is the escrowed amount moved into the company treasury.
type OrderCompleted struct {
	OrderID  uint64 `json:"orderId"`
	ReviewID uint64 `json:"reviewId"`
	Released uint64 `json:"released"`
}

// OrderCancelled is published when the sender cancels the order. Refunded is
// the escrowed amount returned to the sender, 0 for an unpaid order.
type OrderCancelled struct {
	OrderID  uint64 `json:"orderId"`
	Refunded uint64 `json:"refunded"`
}

// ReviewAdded is published after OrderCompleted for the review created by the
// completing call.
type ReviewAdded struct {
	ReviewID uint64           `json:"reviewId"`
	OrderID  uint64           `json:"orderId"`
	Reviewer identity.Address `json:"reviewer"`
	Rating   uint8            `json:"rating"`
}
