package completeorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/review"
	"github.com/shipledger/ledger/internal/transport/http/caller"
	"github.com/shipledger/ledger/internal/transport/http/converters"
	"github.com/shipledger/ledger/internal/transport/http/respond"
	payorder "github.com/shipledger/ledger/internal/transport/http/pay_order"
)

type service interface {
	CompleteOrder(
		ctx context.Context,
		caller identity.Address,
		orderID uint64,
		comment string,
		rating int,
	) (review.Review, error)
}

// completeOrderRequest carries the recipient's delivery confirmation review.
type completeOrderRequest struct {
	Comment string `json:"comment" validate:"required"`
	Rating  int    `json:"rating"  validate:"gte=1,lte=5"`
}

// Validate validates the complete order request.
func (r *completeOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// CompleteOrder handles the delivery confirmation request.
func CompleteOrder(w http.ResponseWriter, r *http.Request, service service) {
	recipient, err := caller.FromRequest(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	orderID, err := payorder.OrderID(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	req := completeOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for complete order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for complete order", "error", err)

		return
	}

	rev, err := service.CompleteOrder(r.Context(), recipient, orderID, req.Comment, req.Rating)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error completing order", "order_id", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, converters.ReviewToResponse(rev))
}
