package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/shopkartapp/shopkart/internal/logging"
	"github.com/shopkartapp/shopkart/internal/observability"
	"github.com/shopkartapp/shopkart/internal/services"
)

// RazorpayEventRouter dispatches verified webhook payloads to the payment
// service. Payloads reach this point only after signature verification.
type RazorpayEventRouter struct {
	service *services.PaymentService
	logger  *slog.Logger
}

func NewRazorpayEventRouter(service *services.PaymentService, logger *slog.Logger) *RazorpayEventRouter {
	return &RazorpayEventRouter{
		service: service,
		logger:  logger,
	}
}

type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (r *RazorpayEventRouter) Handle(ctx context.Context, payload []byte) error {
	span := sentry.StartSpan(
		ctx,
		"handler.razorpay_router.handle",
		sentry.WithOpName("handler.razorpay_router"),
		sentry.WithDescription("RazorpayEventRouter.Handle"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("webhook.provider", "razorpay"))
	meter.Count("webhook.router.received", 1)
	recordFailed := func(reason string) {
		meter.Count("webhook.router.failed", 1, sentry.WithAttributes(attribute.String("reason", reason)))
	}

	var event razorpayEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		recordFailed("invalid_payload")
		return fmt.Errorf("invalid webhook payload: %w", err)
	}
	if event.Event == "" {
		recordFailed("missing_event_type")
		return fmt.Errorf("missing webhook event type")
	}
	meter.SetAttributes(attribute.String("webhook.event_type", event.Event))

	logger := logging.FromContext(ctx, r.logger)
	entity := event.Payload.Payment.Entity

	switch event.Event {
	case "payment.captured":
		if err := r.service.HandlePaymentCaptured(ctx, entity.OrderID, entity.ID); err != nil {
			recordFailed("payment_captured_failed")
			return err
		}
		meter.Count("webhook.router.processed", 1)
		span.Status = sentry.SpanStatusOK
		return nil
	case "payment.failed":
		if err := r.service.HandlePaymentFailed(ctx, entity.OrderID, entity.ID); err != nil {
			recordFailed("payment_failed_handler_failed")
			return err
		}
		meter.Count("webhook.router.processed", 1)
		span.Status = sentry.SpanStatusOK
		return nil
	default:
		logger.Info("unhandled Razorpay event type", "type", event.Event)
		meter.Count("webhook.router.unhandled", 1)
		span.Status = sentry.SpanStatusOK
		return nil
	}
}
