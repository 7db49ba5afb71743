package orderchanges

import (
	"context"
	"net/http"

	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/transport/http/converters"
	"github.com/shipledger/ledger/internal/transport/http/respond"
	payorder "github.com/shipledger/ledger/internal/transport/http/pay_order"
)

type service interface {
	OrderChanges(ctx context.Context, id uint64) ([]orderchange.Change, error)
}

// OrderChanges handles the audit trail lookup for one order; entries come
// back in the exact order the transitions were committed.
func OrderChanges(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := payorder.OrderID(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	changes, err := service.OrderChanges(r.Context(), orderID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, converters.ChangesToResponse(changes))
}
