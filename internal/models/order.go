package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusPaid           OrderStatus = "paid"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRefunded       OrderStatus = "refunded"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusPaid,
		StatusShipped, StatusOutForDelivery, StatusDelivered,
		StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	Category  string  `json:"category,omitempty"`
	SKU       string  `json:"sku,omitempty"`
	Total     float64 `json:"total"`
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Billing is snapshotted at order creation and never follows later
// user-profile edits.
type Billing struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	Address *Address `json:"address,omitempty"`
	GSTIN   string   `json:"gstin,omitempty"`
}

type ShippingInfo struct {
	Method            string    `json:"method,omitempty"`
	Carrier           string    `json:"carrier,omitempty"`
	TrackingNumber    string    `json:"trackingNumber,omitempty"`
	EstimatedDelivery time.Time `json:"estimatedDelivery,omitzero"`
	ActualDelivery    time.Time `json:"actualDelivery,omitzero"`
	Address           *Address  `json:"shippingAddress,omitempty"`
}

// StatusChange is one entry of an order's append-only status history.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

type Order struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"orderNumber"`

	UserID    uuid.UUID `json:"userId"`
	UserEmail string    `json:"userEmail"`
	User      *User     `json:"user,omitempty"`

	Items []OrderItem `json:"items"`

	Subtotal     float64 `json:"subtotal"`
	Tax          float64 `json:"tax"`
	TaxRate      float64 `json:"taxRate"`
	Discount     float64 `json:"discount"`
	DiscountCode string  `json:"discountCode,omitempty"`
	ShippingFee  float64 `json:"shipping"`
	Total        float64 `json:"total"`
	Currency     string  `json:"currency"`

	Billing  Billing       `json:"billing"`
	Shipping *ShippingInfo `json:"shippingInfo,omitempty"`

	Status        OrderStatus    `json:"status"`
	StatusHistory []StatusChange `json:"statusHistory"`

	PaymentMethod     string        `json:"paymentMethod"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	RazorpayOrderID   string        `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string        `json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string        `json:"razorpaySignature,omitempty"`
	PaymentDate       time.Time     `json:"paymentDate,omitzero"`

	Notes              string    `json:"notes,omitempty"`
	InternalNotes      string    `json:"internalNotes,omitempty"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
	RefundAmount       float64   `json:"refundAmount"`
	RefundDate         time.Time `json:"refundDate,omitzero"`

	ConfirmedAt time.Time `json:"confirmedAt,omitzero"`
	ShippedAt   time.Time `json:"shippedAt,omitzero"`
	DeliveredAt time.Time `json:"deliveredAt,omitzero"`
	CancelledAt time.Time `json:"cancelledAt,omitzero"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TotalItems returns the summed quantity across all line items.
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
