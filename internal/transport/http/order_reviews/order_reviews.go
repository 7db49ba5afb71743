package orderreviews

import (
	"context"
	"net/http"

	"github.com/shipledger/ledger/internal/service/models/review"
	"github.com/shipledger/ledger/internal/transport/http/converters"
	"github.com/shipledger/ledger/internal/transport/http/respond"
	payorder "github.com/shipledger/ledger/internal/transport/http/pay_order"
)

type service interface {
	ReviewsByOrder(ctx context.Context, id uint64) ([]review.Review, error)
}

// OrderReviews handles the review lookup for one order.
func OrderReviews(w http.ResponseWriter, r *http.Request, service service) {
	orderID, err := payorder.OrderID(r)
	if err != nil {
		respond.Error(w, err)

		return
	}

	reviews, err := service.ReviewsByOrder(r.Context(), orderID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, converters.ReviewsToResponse(reviews))
}
