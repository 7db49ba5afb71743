package order

import (
	"time"

	"github.com/shipledger/ledger/internal/service/models/identity"
)

// Order represents a delivery order held by the ledger. Orders are created
// once, mutated only through state transitions and never deleted; ids are
// assigned monotonically starting at 0 and never reused.
type Order struct {
	ID         uint64           `json:"id"`
	Sender     identity.Address `json:"sender"`
	Recipient  identity.Address `json:"recipient"`
	DistanceKm uint64           `json:"distanceKm"`
	CargoType  string           `json:"cargoType"`

	// Price is the exact amount, in the smallest monetary unit, the sender
	// must attach to the pay call. Escrowed is the amount currently held by
	// the ledger for this order.
	Price    uint64 `json:"price"`
	Escrowed uint64 `json:"escrowed"`

	Status Status `json:"status"`

	// DeliveryDate is unix seconds; 0 means not yet delivered.
	DeliveryDate int64 `json:"deliveryDate"`

	CreatedAt   int64 `json:"createdAt"`
	PaidAt      int64 `json:"paidAt,omitempty"`
	CompletedAt int64 `json:"completedAt,omitempty"`
	CancelledAt int64 `json:"cancelledAt,omitempty"`
}

// IsPaid reports whether the order has ever been paid. Paid-ness is frozen
// once the order reaches a terminal state.
func (o *Order) IsPaid() bool {
	return o.PaidAt != 0
}

// IsCompleted reports whether the order reached the completed terminal state.
func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// IsCancelled reports whether the order reached the cancelled terminal state.
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsTerminal reports whether no further transition may leave the order.
func (o *Order) IsTerminal() bool {
	return o.Status.Terminal()
}

// ApplyTransition moves the order to the target status and maintains the
// lifecycle timestamps. Callers must validate the transition with
// CanTransition first.
func (o *Order) ApplyTransition(to Status, now time.Time) {
	ts := now.Unix()
	o.Status = to

	switch to {
	case StatusPaid:
		if o.PaidAt == 0 {
			o.PaidAt = ts
		}
	case StatusCompleted:
		if o.CompletedAt == 0 {
			o.CompletedAt = ts
		}
		if o.DeliveryDate == 0 {
			o.DeliveryDate = ts
		}
	case StatusCancelled:
		if o.CancelledAt == 0 {
			o.CancelledAt = ts
		}
	}
}
