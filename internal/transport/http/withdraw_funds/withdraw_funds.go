package withdrawfunds

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/transport/http/caller"
	"github.com/shipledger/ledger/internal/transport/http/respond"
)

type service interface {
	WithdrawCompanyFunds(ctx context.Context, caller identity.Address) (uint64, error)
}

type withdrawResponse struct {
	Amount uint64 `json:"amount"`
}

// WithdrawFunds handles the company withdrawal request: the entire treasury
// balance is transferred to the caller.
func WithdrawFunds(w http.ResponseWriter, r *http.Request, service service) {
	company, err := caller.FromRequest(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	amount, err := service.WithdrawCompanyFunds(r.Context(), company)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error withdrawing company funds", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, withdrawResponse{Amount: amount})
}
