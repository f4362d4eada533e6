package email

import (
	"strings"
	"testing"

	"github.com/shopkartapp/shopkart/internal/models"
)

func TestOrderConfirmation(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		OrderNumber: "ORD-2026-000042",
		UserEmail:   "buyer@example.com",
		Currency:    "INR",
		Billing:     models.Billing{Name: "Asha Rao"},
		Items: []models.OrderItem{
			{Name: "Widget", Quantity: 2, Total: 500},
			{Name: "Gadget", Quantity: 1, Total: 100},
		},
		Subtotal:    600,
		Tax:         108,
		ShippingFee: 0,
		Total:       708,
	}

	message, err := OrderConfirmation(order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if message.To != "buyer@example.com" {
		t.Fatalf("expected recipient buyer@example.com, got %q", message.To)
	}
	if !strings.Contains(message.Subject, "ORD-2026-000042") {
		t.Fatalf("expected order number in subject, got %q", message.Subject)
	}
	for _, want := range []string{"Hi Asha Rao", "Widget x2", "Gadget x1", "INR 708.00"} {
		if !strings.Contains(message.Text, want) {
			t.Fatalf("expected body to contain %q:\n%s", want, message.Text)
		}
	}
}

func TestOrderConfirmation_FallbackName(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		OrderNumber: "ORD-2026-000001",
		UserEmail:   "guest@example.com",
		Currency:    "INR",
	}

	message, err := OrderConfirmation(order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(message.Text, "Hi there") {
		t.Fatalf("expected fallback greeting, got:\n%s", message.Text)
	}
}

func TestOrderConfirmation_NilOrder(t *testing.T) {
	t.Parallel()

	if _, err := OrderConfirmation(nil); err == nil {
		t.Fatal("expected error for nil order")
	}
}

func TestNewProvider_NoopWithoutKey(t *testing.T) {
	t.Parallel()

	if _, ok := NewProvider(Config{}).(NoopProvider); !ok {
		t.Fatal("expected noop provider when no API key is set")
	}
}
