package listorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/transport/http/converters"
	"github.com/shipledger/ledger/internal/transport/http/respond"
)

type service interface {
	Orders(ctx context.Context) ([]order.Order, error)
}

// queryOrdersRequest mirrors the UI's order list filter: lifecycle status
// plus sender/recipient address.
type queryOrdersRequest struct {
	Status    string `schema:"status,omitempty"`
	Sender    string `schema:"sender,omitempty"`
	Recipient string `schema:"recipient,omitempty"`
}

func (q *queryOrdersRequest) match(o order.Order) bool {
	switch q.Status {
	case "", "all":
	case "paid":
		if !o.IsPaid() || o.IsTerminal() {
			return false
		}
	default:
		if o.Status.String() != q.Status {
			return false
		}
	}

	if q.Sender != "" && !o.Sender.Equal(identity.Normalize(q.Sender)) {
		return false
	}
	if q.Recipient != "" && !o.Recipient.Equal(identity.Normalize(q.Recipient)) {
		return false
	}
	return true
}

// ListOrders handles the order list request; results stay ordered by id
// ascending regardless of filters.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.Orders(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting orders", "error", err)

		return
	}

	filtered := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if query.match(o) {
			filtered = append(filtered, o)
		}
	}

	respond.JSON(w, http.StatusOK, converters.OrdersToResponse(filtered))
}
