package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/email"
	"github.com/shopkartapp/shopkart/internal/logging"
	"github.com/shopkartapp/shopkart/internal/models"
	"github.com/shopkartapp/shopkart/internal/razorpay"
)

// PaymentService drives the payment side of the order lifecycle: gateway
// order creation, client-submitted verification, and webhook events. The
// client-confirmed path and the webhook path can both move an order to
// paid; each is idempotent, so a replay or a race between them is a no-op.
type PaymentService struct {
	orders  orderStore
	gateway gatewayClient
	emailer email.Provider
	logger  *slog.Logger
}

func NewPaymentService(orders orderStore, gateway gatewayClient, emailer email.Provider, logger *slog.Logger) *PaymentService {
	if emailer == nil {
		emailer = email.NoopProvider{}
	}
	return &PaymentService{
		orders:  orders,
		gateway: gateway,
		emailer: emailer,
		logger:  logger,
	}
}

func (s *PaymentService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// CreateGatewayOrder creates a provider-side payment intent. The caller is
// responsible for attaching the returned intent id to its order via the
// order update endpoint; no auto-linking happens here.
func (s *PaymentService) CreateGatewayOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.GatewayOrder, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount is required", ErrInvalidInput)
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, amount, currency, receipt)
	if err != nil {
		return nil, err
	}

	s.loggerFromContext(ctx).Info("gateway order created",
		"razorpay_order_id", gatewayOrder.ID,
		"amount", gatewayOrder.Amount,
		"currency", gatewayOrder.Currency,
	)
	return gatewayOrder, nil
}

// VerifyPayment checks a client-submitted payment confirmation and, on
// success, transitions the matched order to paid. Missing inputs, signature
// mismatch, and unknown gateway order ids are three distinct outcomes.
func (s *PaymentService) VerifyPayment(ctx context.Context, razorpayOrderID, razorpayPaymentID, signature string) (*models.Order, error) {
	logger := s.loggerFromContext(ctx)

	if razorpayOrderID == "" || razorpayPaymentID == "" || signature == "" {
		return nil, ErrMissingFields
	}
	if !s.gateway.Configured() {
		return nil, razorpay.ErrNotConfigured
	}

	if !razorpay.VerifyPaymentSignature(razorpayOrderID, razorpayPaymentID, signature, s.gateway.KeySecret()) {
		logger.Warn("payment signature verification failed",
			"razorpay_order_id", razorpayOrderID,
			"razorpay_payment_id", razorpayPaymentID,
		)
		sentry.CaptureException(fmt.Errorf("payment signature mismatch for gateway order %s", razorpayOrderID))
		return nil, ErrVerificationFailed
	}

	order, err := s.orders.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			// A valid signature with no matching order means a spoofed or
			// stale reference; worth reporting, never a silent success.
			logger.Error("no order matches verified payment", "razorpay_order_id", razorpayOrderID)
		}
		return nil, err
	}

	if order.Status == models.StatusPaid && order.RazorpayPaymentID == razorpayPaymentID {
		logger.Info("payment already verified", "order_id", order.ID, "razorpay_payment_id", razorpayPaymentID)
		return order, nil
	}

	updated, err := s.markPaid(ctx, order, razorpayPaymentID, signature)
	if err != nil {
		return nil, err
	}

	logger.Info("payment verified", "order_id", updated.ID, "razorpay_payment_id", razorpayPaymentID)
	return updated, nil
}

// HandlePaymentCaptured applies a payment.captured webhook event. An
// unmatched gateway order id is a logged no-op: test events and replays
// arrive occasionally and must not fail the delivery.
func (s *PaymentService) HandlePaymentCaptured(ctx context.Context, razorpayOrderID, razorpayPaymentID string) error {
	logger := s.loggerFromContext(ctx)

	order, err := s.orders.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if errors.Is(err, db.ErrOrderNotFound) {
		logger.Info("payment.captured for unknown gateway order", "razorpay_order_id", razorpayOrderID)
		return nil
	}
	if err != nil {
		return err
	}

	if order.Status == models.StatusPaid {
		logger.Info("order already paid, ignoring capture replay", "order_id", order.ID)
		return nil
	}

	updated, err := s.markPaid(ctx, order, razorpayPaymentID, "")
	if err != nil {
		return err
	}

	logger.Info("order paid via webhook", "order_id", updated.ID, "razorpay_payment_id", razorpayPaymentID)

	s.sendConfirmationEmail(ctx, updated)
	return nil
}

// HandlePaymentFailed applies a payment.failed webhook event, cancelling
// the matched order. Unknown gateway order ids are a logged no-op.
func (s *PaymentService) HandlePaymentFailed(ctx context.Context, razorpayOrderID, razorpayPaymentID string) error {
	logger := s.loggerFromContext(ctx)

	order, err := s.orders.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if errors.Is(err, db.ErrOrderNotFound) {
		logger.Info("payment.failed for unknown gateway order", "razorpay_order_id", razorpayOrderID)
		return nil
	}
	if err != nil {
		return err
	}

	if order.Status == models.StatusCancelled {
		logger.Info("order already cancelled, ignoring failure replay", "order_id", order.ID)
		return nil
	}

	status := models.StatusCancelled
	paymentStatus := models.PaymentFailed
	reason := "payment failed at gateway"
	patch := db.OrderPatch{
		Status:             &status,
		StatusNote:         reason,
		PaymentStatus:      &paymentStatus,
		CancellationReason: &reason,
	}
	if razorpayPaymentID != "" {
		patch.RazorpayPaymentID = &razorpayPaymentID
	}

	updated, err := s.orders.Update(ctx, order.ID, patch)
	if err != nil {
		return err
	}

	logger.Info("order cancelled after failed payment", "order_id", updated.ID, "razorpay_order_id", razorpayOrderID)
	return nil
}

func (s *PaymentService) markPaid(ctx context.Context, order *models.Order, razorpayPaymentID, signature string) (*models.Order, error) {
	status := models.StatusPaid
	paymentStatus := models.PaymentCompleted
	now := time.Now().UTC()
	patch := db.OrderPatch{
		Status:            &status,
		PaymentStatus:     &paymentStatus,
		RazorpayPaymentID: &razorpayPaymentID,
		PaymentDate:       &now,
	}
	if signature != "" {
		patch.RazorpaySignature = &signature
	}
	return s.orders.Update(ctx, order.ID, patch)
}

// sendConfirmationEmail is best effort; a delivery failure never fails the
// payment transition that triggered it.
func (s *PaymentService) sendConfirmationEmail(ctx context.Context, order *models.Order) {
	logger := s.loggerFromContext(ctx)

	message, err := email.OrderConfirmation(order)
	if err != nil {
		logger.Error("failed to render order confirmation email", "order_id", order.ID, "error", err)
		return
	}
	if message.To == "" {
		return
	}
	if err := s.emailer.SendEmail(ctx, message); err != nil {
		logger.Error("failed to send order confirmation email", "order_id", order.ID, "error", err)
	}
}
