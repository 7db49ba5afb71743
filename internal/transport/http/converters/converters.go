// Package converters maps service layer models to transport DTOs.
package converters

import (
	"github.com/shipledger/ledger/internal/service/models/order"
	"github.com/shipledger/ledger/internal/service/models/orderchange"
	"github.com/shipledger/ledger/internal/service/models/review"
)

// OrderResponse is the wire form of an order. The lifecycle booleans are
// derived from the status for UI compatibility.
type OrderResponse struct {
	ID           uint64 `json:"id"`
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	DistanceKm   uint64 `json:"distanceKm"`
	CargoType    string `json:"cargoType"`
	Price        uint64 `json:"price"`
	Escrowed     uint64 `json:"escrowed"`
	Status       string `json:"status"`
	IsPaid       bool   `json:"isPaid"`
	IsCompleted  bool   `json:"isCompleted"`
	IsCancelled  bool   `json:"isCancelled"`
	DeliveryDate int64  `json:"deliveryDate"`
	CreatedAt    int64  `json:"createdAt"`
}

// OrderToResponse converts an order model to its wire form.
func OrderToResponse(o order.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID,
		Sender:       o.Sender.String(),
		Recipient:    o.Recipient.String(),
		DistanceKm:   o.DistanceKm,
		CargoType:    o.CargoType,
		Price:        o.Price,
		Escrowed:     o.Escrowed,
		Status:       o.Status.String(),
		IsPaid:       o.IsPaid(),
		IsCompleted:  o.IsCompleted(),
		IsCancelled:  o.IsCancelled(),
		DeliveryDate: o.DeliveryDate,
		CreatedAt:    o.CreatedAt,
	}
}

// OrdersToResponse converts a slice of orders.
func OrdersToResponse(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = OrderToResponse(o)
	}
	return out
}

// ReviewResponse is the wire form of a review.
type ReviewResponse struct {
	ID        uint64 `json:"id"`
	OrderID   uint64 `json:"orderId"`
	Reviewer  string `json:"reviewer"`
	Comment   string `json:"comment"`
	Rating    uint8  `json:"rating"`
	CreatedAt int64  `json:"createdAt"`
}

// ReviewToResponse converts a review model to its wire form.
func ReviewToResponse(r review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		OrderID:   r.OrderID,
		Reviewer:  r.Reviewer.String(),
		Comment:   r.Comment,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

// ReviewsToResponse converts a slice of reviews.
func ReviewsToResponse(reviews []review.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewToResponse(r)
	}
	return out
}

// ChangeResponse is the wire form of an audit record.
type ChangeResponse struct {
	OrderID    uint64 `json:"orderId"`
	ChangeType string `json:"changeType"`
	Timestamp  int64  `json:"timestamp"`
	Details    string `json:"details"`
}

// ChangesToResponse converts a slice of audit records.
func ChangesToResponse(changes []orderchange.Change) []ChangeResponse {
	out := make([]ChangeResponse, len(changes))
	for i, ch := range changes {
		out[i] = ChangeResponse{
			OrderID:    ch.OrderID,
			ChangeType: ch.Type.String(),
			Timestamp:  ch.Timestamp,
			Details:    ch.Details,
		}
	}
	return out
}
