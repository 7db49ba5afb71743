package getorder

import (
	"context"
	"net/http"

	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/transport/http/converters"
	"github.com/shipledger/ledger/internal/transport/http/respond"
	payorder "github.com/shipledger/ledger/internal/transport/http/pay_order"
)

type service interface {
	Order(ctx context.Context, id uint64) (order.Order, error)
}

// GetOrder handles the single order lookup.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := payorder.OrderID(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	o, err := service.Order(r.Context(), orderID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, converters.OrderToResponse(o))
}
