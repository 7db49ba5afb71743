package company

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/transport/http/respond"
)

type service interface {
	CompanyAddress(ctx context.Context) (identity.Address, error)
	TreasuryBalance(ctx context.Context) (uint64, error)
}

// companyResponse backs the UI's role check and the management tab.
type companyResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// Company handles the company info request.
func Company(w http.ResponseWriter, r *http.Request, service service) {
	addr, err := service.CompanyAddress(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting company address", "error", err)

		return
	}

	balance, err := service.TreasuryBalance(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting treasury balance", "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, companyResponse{Address: addr.String(), Balance: balance})
}
