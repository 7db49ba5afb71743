package cancelorder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/transport/http/caller"
	"github.com/shipledger/ledger/internal/transport/http/respond"
	payorder "github.com/shipledger/ledger/internal/transport/http/pay_order"
)

type service interface {
	CancelOrder(ctx context.Context, caller identity.Address, orderID uint64) (uint64, error)
}

type cancelOrderResponse struct {
	OrderID  uint64 `json:"orderId"`
	Refunded uint64 `json:"refunded"`
}

// CancelOrder handles the cancel order request. Refunded is the escrowed
// amount returned to the sender, 0 for an unpaid order.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service) {
	sender, err := caller.FromRequest(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	orderID, err := payorder.OrderID(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	refunded, err := service.CancelOrder(r.Context(), sender, orderID)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error cancelling order", "order_id", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, cancelOrderResponse{OrderID: orderID, Refunded: refunded})
}
