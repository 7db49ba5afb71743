package treasury

import "github.com/shipledger/ledger/internal/service/models/identity"

// Treasury tracks the company's withdrawable balance. It is credited when an
// order completes and drained in full by the authorized withdrawal; refunds
// never touch it because escrow is held per order until completion.
type Treasury struct {
	Company identity.Address `json:"company"`
	Balance uint64           `json:"balance"`
}

// Credit increases the withdrawable balance.
func (t *Treasury) Credit(amount uint64) {
	t.Balance += amount
}

// WithdrawAll zeroes the balance and returns the prior amount.
func (t *Treasury) WithdrawAll() uint64 {
	amount := t.Balance
	t.Balance = 0
	return amount
}

// IsCompany reports whether the caller holds the company role.
func (t *Treasury) IsCompany(caller identity.Address) bool {
	return t.Company.Equal(caller)
}
