package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shipledger/ledger/internal/service/models/identity"
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/transport/http/caller"
	"github.com/shipledger/ledger/internal/transport/http/converters"
	"github.com/shipledger/ledger/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(
		ctx context.Context,
		sender, recipient identity.Address,
		distanceKm uint64,
		cargoType string,
		price uint64,
	) (order.Order, error)
}

// createOrderRequest represents a create order request. The sender is the
// authenticated caller, not part of the body.
type createOrderRequest struct {
	Recipient  string `json:"recipient"  validate:"required"`
	DistanceKm uint64 `json:"distanceKm" validate:"gt=0"`
	CargoType  string `json:"cargoType"  validate:"required"`
	Price      uint64 `json:"price"      validate:"gt=0"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	sender, err := caller.FromRequest(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(
		r.Context(),
		sender,
		identity.Normalize(req.Recipient),
		req.DistanceKm,
		req.CargoType,
		req.Price,
	)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error creating order", "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, converters.OrderToResponse(created))
}
