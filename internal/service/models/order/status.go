package order

// Status is the order lifecycle state (persisted as a string).
type Status string

const (
	StatusCreated   Status = "created"   // created, awaiting payment
	StatusPaid      Status = "paid"      // funds escrowed, awaiting delivery
	StatusCompleted Status = "completed" // delivered and reviewed, terminal
	StatusCancelled Status = "cancelled" // cancelled by the sender, terminal
)

// allowTransition is the order state machine as a directed graph. Completed
// and cancelled are terminal: nothing leaves them.
var allowTransition = map[Status][]Status{
	StatusCreated:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is an allowed transition.
func CanTransition(from, to Status) bool {
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
