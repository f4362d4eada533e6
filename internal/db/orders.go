package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopkartapp/shopkart/internal/models"
)

// OrderStore owns all order mutation. Status-history appends happen here,
// inside the same transaction as the status write, so no caller can change
// a status without the matching history entry.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `id, order_number, user_id, user_email, items,
	subtotal, tax, tax_rate, discount, discount_code, shipping_fee, total, currency,
	billing, shipping, status, status_history,
	payment_method, payment_status, razorpay_order_id, razorpay_payment_id,
	razorpay_signature, payment_date,
	notes, internal_notes, cancellation_reason, refund_amount, refund_date,
	confirmed_at, shipped_at, delivered_at, cancelled_at, created_at, updated_at`

// Create persists a new order in status pending with a single-entry status
// history. Order numbers come from a dedicated sequence so concurrent
// creates cannot collide on the same number; a count-based scheme would
// race here.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	if err := validateOrder(order); err != nil {
		return err
	}

	for i := range order.Items {
		if order.Items[i].Total == 0 {
			order.Items[i].Total = order.Items[i].Price * float64(order.Items[i].Quantity)
		}
	}

	if order.Currency == "" {
		order.Currency = "INR"
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "razorpay"
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentPending
	}
	order.Status = models.StatusPending
	order.StatusHistory = []models.StatusChange{{
		Status:    models.StatusPending,
		Timestamp: time.Now().UTC(),
	}}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	billingJSON, err := json.Marshal(order.Billing)
	if err != nil {
		return err
	}
	historyJSON, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return err
	}
	var shippingJSON []byte
	if order.Shipping != nil {
		shippingJSON, err = json.Marshal(order.Shipping)
		if err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("failed to assign order number: %w", err)
	}
	order.OrderNumber = formatOrderNumber(time.Now().Year(), seq)

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, user_id, user_email, items,
			subtotal, tax, tax_rate, discount, discount_code, shipping_fee, total, currency,
			billing, shipping, status, status_history, payment_method, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.UserID, order.UserEmail, itemsJSON,
		order.Subtotal, order.Tax, order.TaxRate, order.Discount,
		textOrNull(order.DiscountCode), order.ShippingFee, order.Total, order.Currency,
		billingJSON, shippingJSON, string(order.Status), historyJSON,
		order.PaymentMethod, string(order.PaymentStatus),
	)

	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&order.ID, &createdAt, &updatedAt); err != nil {
		return err
	}
	order.CreatedAt = createdAt.Time
	order.UpdatedAt = updatedAt.Time

	return tx.Commit(ctx)
}

func (s *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// GetByRazorpayOrderID resolves the order a gateway callback refers to.
// The gateway order id is the only join key verification and webhook flows
// may use; internal ids are never exposed to the gateway.
func (s *OrderStore) GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	if razorpayOrderID == "" {
		return nil, ErrOrderNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE razorpay_order_id = $1`, razorpayOrderID)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// OrderPatch is a partial update. Nil fields are left untouched.
type OrderPatch struct {
	Status     *models.OrderStatus
	StatusNote string

	PaymentStatus     *models.PaymentStatus
	RazorpayOrderID   *string
	RazorpayPaymentID *string
	RazorpaySignature *string
	PaymentDate       *time.Time

	Shipping *models.ShippingInfo

	Notes              *string
	InternalNotes      *string
	CancellationReason *string
	RefundAmount       *float64
	RefundDate         *time.Time
}

// Update applies a partial update and returns the updated order. A status
// change appends exactly one history entry and stamps the matching
// milestone timestamp; setting the status an order already has is a no-op,
// which keeps webhook replays from growing the history.
func (s *OrderStore) Update(ctx context.Context, orderID uuid.UUID, patch OrderPatch) (*models.Order, error) {
	if patch.Status != nil && !models.ValidOrderStatus(string(*patch.Status)) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, *patch.Status)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	order, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	applyPatch(order, patch)

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	billingJSON, err := json.Marshal(order.Billing)
	if err != nil {
		return nil, err
	}
	historyJSON, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return nil, err
	}
	var shippingJSON []byte
	if order.Shipping != nil {
		shippingJSON, err = json.Marshal(order.Shipping)
		if err != nil {
			return nil, err
		}
	}

	var updatedAt pgtype.Timestamptz
	err = tx.QueryRow(ctx, `
		UPDATE orders SET
			items = $2, billing = $3, shipping = $4,
			status = $5, status_history = $6,
			payment_status = $7, razorpay_order_id = $8, razorpay_payment_id = $9,
			razorpay_signature = $10, payment_date = $11,
			notes = $12, internal_notes = $13, cancellation_reason = $14,
			refund_amount = $15, refund_date = $16,
			confirmed_at = $17, shipped_at = $18, delivered_at = $19, cancelled_at = $20,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		order.ID,
		itemsJSON, billingJSON, shippingJSON,
		string(order.Status), historyJSON,
		string(order.PaymentStatus),
		textOrNull(order.RazorpayOrderID), textOrNull(order.RazorpayPaymentID),
		textOrNull(order.RazorpaySignature), timeOrNull(order.PaymentDate),
		textOrNull(order.Notes), textOrNull(order.InternalNotes), textOrNull(order.CancellationReason),
		order.RefundAmount, timeOrNull(order.RefundDate),
		timeOrNull(order.ConfirmedAt), timeOrNull(order.ShippedAt),
		timeOrNull(order.DeliveredAt), timeOrNull(order.CancelledAt),
	).Scan(&updatedAt)
	if err != nil {
		return nil, err
	}
	order.UpdatedAt = updatedAt.Time

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func applyPatch(order *models.Order, patch OrderPatch) {
	if patch.Status != nil && *patch.Status != order.Status {
		now := time.Now().UTC()
		order.Status = *patch.Status
		order.StatusHistory = append(order.StatusHistory, models.StatusChange{
			Status:    *patch.Status,
			Timestamp: now,
			Note:      patch.StatusNote,
		})
		switch *patch.Status {
		case models.StatusConfirmed:
			order.ConfirmedAt = now
		case models.StatusShipped:
			order.ShippedAt = now
		case models.StatusDelivered:
			order.DeliveredAt = now
		case models.StatusCancelled:
			order.CancelledAt = now
		}
	}

	if patch.PaymentStatus != nil {
		order.PaymentStatus = *patch.PaymentStatus
	}
	if patch.RazorpayOrderID != nil {
		order.RazorpayOrderID = *patch.RazorpayOrderID
	}
	if patch.RazorpayPaymentID != nil {
		order.RazorpayPaymentID = *patch.RazorpayPaymentID
	}
	if patch.RazorpaySignature != nil {
		order.RazorpaySignature = *patch.RazorpaySignature
	}
	if patch.PaymentDate != nil {
		order.PaymentDate = *patch.PaymentDate
	}
	if patch.Shipping != nil {
		order.Shipping = patch.Shipping
	}
	if patch.Notes != nil {
		order.Notes = *patch.Notes
	}
	if patch.InternalNotes != nil {
		order.InternalNotes = *patch.InternalNotes
	}
	if patch.CancellationReason != nil {
		order.CancellationReason = *patch.CancellationReason
	}
	if patch.RefundAmount != nil {
		order.RefundAmount = *patch.RefundAmount
	}
	if patch.RefundDate != nil {
		order.RefundDate = *patch.RefundDate
	}
}

func validateOrder(order *models.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order is required", ErrInvalidOrder)
	}
	if order.UserID == uuid.Nil {
		return fmt.Errorf("%w: user is required", ErrInvalidOrder)
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", ErrInvalidOrder)
	}
	for i, item := range order.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidOrder, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d price must not be negative", ErrInvalidOrder, i)
		}
		if item.Name == "" {
			return fmt.Errorf("%w: item %d name is required", ErrInvalidOrder, i)
		}
	}
	if order.Subtotal < 0 || order.Tax < 0 || order.Discount < 0 || order.ShippingFee < 0 || order.Total < 0 {
		return fmt.Errorf("%w: pricing fields must not be negative", ErrInvalidOrder)
	}
	return nil
}

func formatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("ORD-%d-%06d", year, seq)
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order                                                 models.Order
		itemsJSON, billingJSON, shippingJSON, historyJSON     []byte
		discountCode, razorpayOrderID, razorpayPaymentID      pgtype.Text
		razorpaySignature, notes, internalNotes, cancelReason pgtype.Text
		status, paymentStatus                                 string
		paymentDate, refundDate                               pgtype.Timestamptz
		confirmedAt, shippedAt, deliveredAt, cancelledAt      pgtype.Timestamptz
		createdAt, updatedAt                                  pgtype.Timestamptz
	)

	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &order.UserEmail, &itemsJSON,
		&order.Subtotal, &order.Tax, &order.TaxRate, &order.Discount, &discountCode,
		&order.ShippingFee, &order.Total, &order.Currency,
		&billingJSON, &shippingJSON, &status, &historyJSON,
		&order.PaymentMethod, &paymentStatus, &razorpayOrderID, &razorpayPaymentID,
		&razorpaySignature, &paymentDate,
		&notes, &internalNotes, &cancelReason, &order.RefundAmount, &refundDate,
		&confirmedAt, &shippedAt, &deliveredAt, &cancelledAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatus(status)
	order.PaymentStatus = models.PaymentStatus(paymentStatus)
	order.DiscountCode = discountCode.String
	order.RazorpayOrderID = razorpayOrderID.String
	order.RazorpayPaymentID = razorpayPaymentID.String
	order.RazorpaySignature = razorpaySignature.String
	order.Notes = notes.String
	order.InternalNotes = internalNotes.String
	order.CancellationReason = cancelReason.String
	order.PaymentDate = paymentDate.Time
	order.RefundDate = refundDate.Time
	order.ConfirmedAt = confirmedAt.Time
	order.ShippedAt = shippedAt.Time
	order.DeliveredAt = deliveredAt.Time
	order.CancelledAt = cancelledAt.Time
	order.CreatedAt = createdAt.Time
	order.UpdatedAt = updatedAt.Time

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(billingJSON, &order.Billing); err != nil {
		return nil, err
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &order.StatusHistory); err != nil {
			return nil, err
		}
	}
	if len(shippingJSON) > 0 {
		order.Shipping = &models.ShippingInfo{}
		if err := json.Unmarshal(shippingJSON, order.Shipping); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

func textOrNull(value string) pgtype.Text {
	return pgtype.Text{String: value, Valid: value != ""}
}

func timeOrNull(value time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: value, Valid: !value.IsZero()}
}
