package order

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusPaid, true},
		{StatusCreated, StatusCancelled, true},
		{StatusCreated, StatusCompleted, false},
		{StatusPaid, StatusCompleted, true},
		{StatusPaid, StatusCancelled, true},
		{StatusPaid, StatusCreated, false},
		{StatusCompleted, StatusPaid, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPaid, false},
		{StatusCancelled, StatusCompleted, false},
		{Status("unknown"), StatusPaid, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if StatusCreated.Terminal() || StatusPaid.Terminal() {
		t.Fatalf("created and paid must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Fatalf("completed and cancelled must be terminal")
	}
}

func TestApplyTransitionTimestamps(t *testing.T) {
	now := time.Unix(1700000000, 0)

	o := Order{Status: StatusCreated, CreatedAt: now.Unix()}
	o.ApplyTransition(StatusPaid, now)
	if o.Status != StatusPaid {
		t.Fatalf("expected status paid, got %s", o.Status)
	}
	if o.PaidAt != now.Unix() {
		t.Fatalf("expected PaidAt %d, got %d", now.Unix(), o.PaidAt)
	}

	later := now.Add(time.Hour)
	o.ApplyTransition(StatusCompleted, later)
	if o.CompletedAt != later.Unix() {
		t.Fatalf("expected CompletedAt %d, got %d", later.Unix(), o.CompletedAt)
	}
	if o.DeliveryDate != later.Unix() {
		t.Fatalf("expected DeliveryDate set on completion, got %d", o.DeliveryDate)
	}
	if !o.IsPaid() {
		t.Fatalf("paid-ness must survive completion")
	}
}

func TestApplyTransitionCancelKeepsPaidAt(t *testing.T) {
	now := time.Unix(1700000000, 0)

	o := Order{Status: StatusCreated, CreatedAt: now.Unix()}
	o.ApplyTransition(StatusPaid, now)
	o.ApplyTransition(StatusCancelled, now.Add(time.Minute))

	if !o.IsCancelled() {
		t.Fatalf("expected cancelled, got %s", o.Status)
	}
	if !o.IsPaid() {
		t.Fatalf("cancellation must not erase PaidAt")
	}
	if o.DeliveryDate != 0 {
		t.Fatalf("cancelled order must not get a delivery date")
	}
}
