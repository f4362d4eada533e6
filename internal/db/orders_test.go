package db

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shopkartapp/shopkart/internal/models"
)

func baseOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		Items:         []models.OrderItem{{Name: "Widget", Price: 100, Quantity: 1, Total: 100}},
		StatusHistory: []models.StatusChange{{Status: models.StatusPending, Timestamp: time.Now().UTC()}},
	}
}

func TestApplyPatch_StatusChangeAppendsHistory(t *testing.T) {
	t.Parallel()

	order := baseOrder()
	status := models.StatusCancelled
	applyPatch(order, OrderPatch{Status: &status, StatusNote: "payment failed at gateway"})

	if order.Status != models.StatusCancelled {
		t.Fatalf("expected status cancelled, got %s", order.Status)
	}
	if len(order.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(order.StatusHistory))
	}
	last := order.StatusHistory[1]
	if last.Status != models.StatusCancelled || last.Note != "payment failed at gateway" {
		t.Fatalf("unexpected history entry: %+v", last)
	}
	if last.Timestamp.IsZero() {
		t.Fatal("expected history entry timestamped")
	}
	if order.CancelledAt.IsZero() {
		t.Fatal("expected cancelled_at stamped")
	}
}

func TestApplyPatch_SameStatusDoesNotGrowHistory(t *testing.T) {
	t.Parallel()

	order := baseOrder()
	status := models.StatusPending
	applyPatch(order, OrderPatch{Status: &status})

	if len(order.StatusHistory) != 1 {
		t.Fatalf("expected history unchanged, got %d entries", len(order.StatusHistory))
	}
}

func TestApplyPatch_MilestoneTimestamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  models.OrderStatus
		stamped func(*models.Order) time.Time
	}{
		{name: "confirmed", status: models.StatusConfirmed, stamped: func(o *models.Order) time.Time { return o.ConfirmedAt }},
		{name: "shipped", status: models.StatusShipped, stamped: func(o *models.Order) time.Time { return o.ShippedAt }},
		{name: "delivered", status: models.StatusDelivered, stamped: func(o *models.Order) time.Time { return o.DeliveredAt }},
		{name: "cancelled", status: models.StatusCancelled, stamped: func(o *models.Order) time.Time { return o.CancelledAt }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order := baseOrder()
			status := tc.status
			applyPatch(order, OrderPatch{Status: &status})
			if tc.stamped(order).IsZero() {
				t.Fatalf("expected %s milestone stamped", tc.name)
			}
		})
	}
}

func TestApplyPatch_PaymentFieldsWithoutStatusChange(t *testing.T) {
	t.Parallel()

	order := baseOrder()
	paymentStatus := models.PaymentProcessing
	gatewayOrderID := "order_gw1"
	applyPatch(order, OrderPatch{
		PaymentStatus:   &paymentStatus,
		RazorpayOrderID: &gatewayOrderID,
	})

	if order.PaymentStatus != models.PaymentProcessing {
		t.Fatalf("expected payment status processing, got %s", order.PaymentStatus)
	}
	if order.RazorpayOrderID != "order_gw1" {
		t.Fatalf("expected gateway order id recorded, got %q", order.RazorpayOrderID)
	}
	if len(order.StatusHistory) != 1 {
		t.Fatalf("expected history untouched, got %d entries", len(order.StatusHistory))
	}
}

func TestValidateOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*models.Order)
		wantErr bool
	}{
		{name: "valid order", mutate: func(o *models.Order) {}},
		{name: "missing user", mutate: func(o *models.Order) { o.UserID = uuid.Nil }, wantErr: true},
		{name: "no items", mutate: func(o *models.Order) { o.Items = nil }, wantErr: true},
		{name: "zero quantity", mutate: func(o *models.Order) { o.Items[0].Quantity = 0 }, wantErr: true},
		{name: "negative price", mutate: func(o *models.Order) { o.Items[0].Price = -1 }, wantErr: true},
		{name: "unnamed item", mutate: func(o *models.Order) { o.Items[0].Name = "" }, wantErr: true},
		{name: "negative total", mutate: func(o *models.Order) { o.Total = -10 }, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order := baseOrder()
			tc.mutate(order)

			err := validateOrder(order)
			if tc.wantErr && !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFormatOrderNumber(t *testing.T) {
	t.Parallel()

	if got := formatOrderNumber(2026, 7); got != "ORD-2026-000007" {
		t.Fatalf("formatOrderNumber() = %q", got)
	}
	if got := formatOrderNumber(2026, 1234567); got != "ORD-2026-1234567" {
		t.Fatalf("expected sequence to widen past six digits, got %q", got)
	}
}
