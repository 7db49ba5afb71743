// Package errs defines the error kinds returned by the ledger core. Callers
// match them with errors.Is; the transport layer translates each kind into an
// HTTP status, the core never decides wording for the UI.
package errs

import "errors"

var (
	// ErrInvalidInput marks malformed or out-of-range arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized marks a caller lacking the role required for the action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState marks a transition that is not legal from the order's
	// current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientFunds marks a payment that does not exactly match the
	// required amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound marks a reference to an order or review that does not exist.
	ErrNotFound = errors.New("not found")
)
