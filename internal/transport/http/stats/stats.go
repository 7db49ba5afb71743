package stats

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shipledger/ledger/internal/service/models/rating"
	"github.com/shipledger/ledger/internal/transport/http/respond"
)

type service interface {
	OrderCount(ctx context.Context) (uint64, error)
	ReviewCount(ctx context.Context) (uint64, error)
	AverageRating(ctx context.Context) (rating.Aggregate, error)
}

// statsResponse backs the UI statistics tab. AverageRating is fixed-point
// hundredths (450 means 4.50); AverageRatingDisplay is the formatted form.
type statsResponse struct {
	OrderCount           uint64 `json:"orderCount"`
	ReviewCount          uint64 `json:"reviewCount"`
	AverageRating        uint64 `json:"averageRating"`
	AverageRatingDisplay string `json:"averageRatingDisplay"`
}

// Stats handles the statistics request.
func Stats(w http.ResponseWriter, r *http.Request, service service) {
	orderCount, err := service.OrderCount(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting order count", "error", err)

		return
	}

	reviewCount, err := service.ReviewCount(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting review count", "error", err)

		return
	}

	agg, err := service.AverageRating(r.Context())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting average rating", "error", err)

		return
	}

	hundredths := agg.AverageHundredths()
	respond.JSON(w, http.StatusOK, statsResponse{
		OrderCount:           orderCount,
		ReviewCount:          reviewCount,
		AverageRating:        hundredths,
		AverageRatingDisplay: fmt.Sprintf("%d.%02d", hundredths/100, hundredths%100),
	})
}
