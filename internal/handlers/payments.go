package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/shopkartapp/shopkart/internal/cache"
	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/razorpay"
	"github.com/shopkartapp/shopkart/internal/services"
)

// webhookIdempotencyTTL is how long webhook event IDs are kept for
// deduplication.
const webhookIdempotencyTTL = 24 * time.Hour

type createPaymentOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreatePaymentOrder creates a gateway payment intent sized by the client.
// The amount is already in the smallest currency unit; nothing is scaled
// here.
func (h *Handlers) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req createPaymentOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 {
		respondMessage(w, http.StatusBadRequest, "amount is required")
		return
	}

	gatewayOrder, err := h.paymentService.CreateGatewayOrder(ctx, req.Amount, req.Currency, req.Receipt)
	switch {
	case err == nil:
	case errors.Is(err, razorpay.ErrNotConfigured):
		logger.Error("payment gateway not configured")
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Payment gateway not configured. Please check server configuration.",
			"error":   "RAZORPAY_KEYS_MISSING",
		})
		return
	case errors.Is(err, services.ErrInvalidInput):
		respondMessage(w, http.StatusBadRequest, "amount is required")
		return
	default:
		logger.Error("failed to create gateway order", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to create payment order")
		return
	}

	respondJSON(w, http.StatusOK, gatewayOrder)
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// VerifyPayment handles the client-confirmed payment path. Missing fields,
// a bad signature, and an unmatched order map to distinct status codes so
// callers can tell "couldn't check" from "checked and failed".
func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req verifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	order, err := h.paymentService.VerifyPayment(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrMissingFields):
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Missing payment details",
		})
		return
	case errors.Is(err, services.ErrVerificationFailed):
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Payment verification failed - invalid signature",
		})
		return
	case errors.Is(err, db.ErrOrderNotFound):
		respondJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "Order not found",
		})
		return
	case errors.Is(err, razorpay.ErrNotConfigured):
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Payment verification failed - server configuration error",
		})
		return
	default:
		logger.Error("payment verification error", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Payment verification error",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Payment verified successfully",
		"order":   order,
	})
}

// RazorpayWebhook authenticates a gateway event against the raw request
// bytes before anything parses them, then hands the event to the router.
// Duplicate deliveries are dropped via the event-id cache.
func (h *Handlers) RazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("failed to read webhook body", "error", err)
		respondMessage(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if signature == "" {
		respondMessage(w, http.StatusBadRequest, "Missing webhook signature")
		return
	}

	secret := h.config.WebhookSecret()
	if secret == "" {
		logger.Error("webhook secret not configured")
		respondMessage(w, http.StatusInternalServerError, "Webhook verification not configured")
		return
	}

	if !razorpay.VerifyWebhookSignature(body, signature, secret) {
		logger.Warn("invalid webhook signature", "remote_ip", clientIP(r))
		sentry.CaptureException(fmt.Errorf("webhook signature mismatch from %s", clientIP(r)))
		respondMessage(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	eventID := r.Header.Get("X-Razorpay-Event-Id")
	cacheKey := ""
	if eventID != "" {
		cacheKey = cache.WebhookKey("razorpay", eventID)
		if _, err := h.cacheProvider.Get(ctx, cacheKey); err == nil {
			logger.Info("webhook already processed", "event_id", eventID)
			respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
			return
		}
	}

	if processErr := h.razorpayRouter.Handle(ctx, body); processErr != nil {
		logger.Error("failed to process webhook", "error", processErr)
		respondMessage(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	if cacheKey != "" {
		if err := h.cacheProvider.Set(ctx, cacheKey, "processed", webhookIdempotencyTTL); err != nil {
			logger.Error("failed to mark webhook as processed in cache", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
