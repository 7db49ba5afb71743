package identity

import "strings"

// Address identifies a caller. Addresses arrive pre-authenticated from the
// collaborator layer and are treated as opaque strings; comparison is
// case-insensitive because wallet-style hex addresses differ only in casing
// between providers.
type Address string

// Zero is the absent address.
const Zero Address = ""

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is absent.
func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

// Equal compares two addresses ignoring case.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(strings.TrimSpace(string(a)), strings.TrimSpace(string(other)))
}

// Normalize returns the canonical (trimmed, lower-cased) form of the address.
func Normalize(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}
