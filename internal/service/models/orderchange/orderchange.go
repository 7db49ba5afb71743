package orderchange

// ChangeType classifies one successful order transition.
type ChangeType string

const (
	TypeCreated   ChangeType = "created"
	TypePaid      ChangeType = "paid"
	TypeCompleted ChangeType = "completed"
	TypeCancelled ChangeType = "cancelled"
)

// Change is one immutable audit record. Changes are appended only on
// successful transitions, never mutated or removed; timestamps are unix
// seconds and non-decreasing across the whole log.
type Change struct {
	OrderID   uint64     `json:"orderId"`
	Type      ChangeType `json:"changeType"`
	Timestamp int64      `json:"timestamp"`
	Details   string     `json:"details"`
}

func (t ChangeType) String() string {
	return string(t)
}
