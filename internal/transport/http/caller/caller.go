// Package caller extracts the pre-authenticated caller identity from a
// request. The core never infers identity from ambient context; the
// collaborator layer authenticates and forwards the address explicitly.
package caller

import (
	"fmt"
	"net/http"

	"github.com/shipledger/ledger/internal/service/errs"
	"github.com/shipledger/ledger/internal/service/models/identity"
)

// Header carries the authenticated caller address on mutating calls.
const Header = "X-Caller-Address"

// FromRequest returns the caller address or ErrInvalidInput when absent.
func FromRequest(r *http.Request) (identity.Address, error) {
	addr := identity.Normalize(r.Header.Get(Header))
	if addr.IsZero() {
		return identity.Zero, fmt.Errorf("missing %s header: %w", Header, errs.ErrInvalidInput)
	}
	return addr, nil
}
