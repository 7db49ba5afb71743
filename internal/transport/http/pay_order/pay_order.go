package payorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shipledger/ledger/internal/service/errs"
	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/transport/http/caller"
	"github.com/shipledger/ledger/internal/transport/http/converters"
	"github.com/shipledger/ledger/internal/transport/http/respond"
)

type service interface {
	PayForOrder(
		ctx context.Context,
		caller identity.Address,
		orderID uint64,
		amount uint64,
	) (order.Order, error)
}

// payOrderRequest carries the attached payment; it must exactly match the
// order price.
type payOrderRequest struct {
	Amount uint64 `json:"amount" validate:"gt=0"`
}

// Validate validates the pay order request.
func (r *payOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// OrderID parses the order id path parameter shared by the per-order routes.
func OrderID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id %q: %w", raw, errs.ErrInvalidInput)
	}
	return id, nil
}

// PayOrder handles the pay order request.
func PayOrder(w http.ResponseWriter, r *http.Request, service service) {
	payer, err := caller.FromRequest(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	orderID, err := OrderID(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	req := payOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for pay order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for pay order", "error", err)

		return
	}

	paid, err := service.PayForOrder(r.Context(), payer, orderID, req.Amount)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error paying for order", "order_id", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, converters.OrderToResponse(paid))
}
