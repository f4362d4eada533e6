package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/models"
	"github.com/shopkartapp/shopkart/internal/services"
)

type createOrderRequest struct {
	UserEmail string             `json:"userEmail"`
	Items     []models.OrderItem `json:"items"`
	Subtotal  float64            `json:"subtotal"`
	Tax       float64            `json:"tax"`
	Shipping  float64            `json:"shipping"`
	Total     float64            `json:"total"`
	Billing   *models.Billing    `json:"billing"`
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserEmail == "" {
		respondMessage(w, http.StatusBadRequest, "userEmail is required")
		return
	}
	if len(req.Items) == 0 {
		respondMessage(w, http.StatusBadRequest, "items are required")
		return
	}

	order, err := h.orderService.Create(ctx, services.CreateOrderInput{
		UserEmail: req.UserEmail,
		Items:     req.Items,
		Subtotal:  req.Subtotal,
		Tax:       req.Tax,
		Shipping:  req.Shipping,
		Total:     req.Total,
		Billing:   req.Billing,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, db.ErrInvalidOrder):
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, db.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, "User not found")
		return
	default:
		logger.Error("failed to create order", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Order not found")
		return
	}

	order, err := h.orderService.Get(ctx, orderID)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrOrderNotFound):
		respondMessage(w, http.StatusNotFound, "Order not found")
		return
	default:
		logger.Error("failed to fetch order", "order_id", orderID, "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// updateOrderRequest carries an arbitrary subset of mutable order fields;
// absent fields stay untouched. Attaching a gateway order id after payment
// intent creation goes through here.
type updateOrderRequest struct {
	Status     *string `json:"status"`
	StatusNote string  `json:"statusNote"`

	PaymentStatus     *string    `json:"paymentStatus"`
	RazorpayOrderID   *string    `json:"razorpayOrderId"`
	RazorpayPaymentID *string    `json:"razorpayPaymentId"`
	RazorpaySignature *string    `json:"razorpaySignature"`
	PaymentDate       *time.Time `json:"paymentDate"`

	Shipping *models.ShippingInfo `json:"shippingInfo"`

	Notes              *string    `json:"notes"`
	InternalNotes      *string    `json:"internalNotes"`
	CancellationReason *string    `json:"cancellationReason"`
	RefundAmount       *float64   `json:"refundAmount"`
	RefundDate         *time.Time `json:"refundDate"`
}

func (h *Handlers) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Order not found")
		return
	}

	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := db.OrderPatch{
		StatusNote:         req.StatusNote,
		RazorpayOrderID:    req.RazorpayOrderID,
		RazorpayPaymentID:  req.RazorpayPaymentID,
		RazorpaySignature:  req.RazorpaySignature,
		PaymentDate:        req.PaymentDate,
		Shipping:           req.Shipping,
		Notes:              req.Notes,
		InternalNotes:      req.InternalNotes,
		CancellationReason: req.CancellationReason,
		RefundAmount:       req.RefundAmount,
		RefundDate:         req.RefundDate,
	}
	if req.Status != nil {
		if !models.ValidOrderStatus(*req.Status) {
			respondMessage(w, http.StatusBadRequest, "Unknown order status")
			return
		}
		status := models.OrderStatus(*req.Status)
		patch.Status = &status
	}
	if req.PaymentStatus != nil {
		paymentStatus := models.PaymentStatus(*req.PaymentStatus)
		patch.PaymentStatus = &paymentStatus
	}

	order, err := h.orderService.Update(ctx, orderID, patch)
	switch {
	case err == nil:
	case errors.Is(err, db.ErrOrderNotFound):
		respondMessage(w, http.StatusNotFound, "Order not found")
		return
	case errors.Is(err, db.ErrInvalidOrder):
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	default:
		logger.Error("failed to update order", "order_id", orderID, "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
