package review

import "github.com/shipledger/ledger/internal/service/models/identity"

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a recipient's review of a completed order. Exactly one review
// exists per completed order and it is immutable once written.
type Review struct {
	ID       uint64           `json:"id"`
	OrderID  uint64           `json:"orderId"`
	Reviewer identity.Address `json:"reviewer"`
	Comment  string           `json:"comment"`
	Rating   uint8            `json:"rating"`

	// CreatedAt is unix seconds, equal to the order's completion time.
	CreatedAt int64 `json:"createdAt"`
}

// ValidRating reports whether r is inside the inclusive 1..5 range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
