package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/logging"
	"github.com/shopkartapp/shopkart/internal/models"
)

// OrderService orchestrates order creation and updates; all mutation goes
// through the order store so its history invariant holds on every path.
type OrderService struct {
	orders orderStore
	users  userStore
	logger *slog.Logger
}

func NewOrderService(orders orderStore, users userStore, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		users:  users,
		logger: logger,
	}
}

func (s *OrderService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type CreateOrderInput struct {
	UserEmail string
	Items     []models.OrderItem
	Subtotal  float64
	Tax       float64
	Shipping  float64
	Total     float64
	Billing   *models.Billing
}

// Create builds a pending order for the user identified by email. Billing
// defaults to a snapshot of the user's profile when the client supplies
// none.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	logger := s.loggerFromContext(ctx)

	if input.UserEmail == "" {
		return nil, fmt.Errorf("%w: userEmail is required", ErrInvalidInput)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: items are required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, input.UserEmail)
	if err != nil {
		return nil, err
	}

	billing := input.Billing
	if billing == nil {
		billing = &models.Billing{
			Name:    user.Name,
			Email:   user.Email,
			Phone:   user.Phone,
			Address: user.Address,
		}
	}

	order := &models.Order{
		UserID:      user.ID,
		UserEmail:   user.Email,
		Items:       input.Items,
		Subtotal:    input.Subtotal,
		Tax:         input.Tax,
		ShippingFee: input.Shipping,
		Total:       input.Total,
		Billing:     *billing,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.Info("order created", "order_id", order.ID, "order_number", order.OrderNumber, "user_email", order.UserEmail)

	order.User = user.Public()
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.populateUser(ctx, order)
	return order, nil
}

func (s *OrderService) Update(ctx context.Context, orderID uuid.UUID, patch db.OrderPatch) (*models.Order, error) {
	order, err := s.orders.Update(ctx, orderID, patch)
	if err != nil {
		return nil, err
	}
	s.populateUser(ctx, order)
	return order, nil
}

// populateUser attaches the owning user. A lookup failure is logged, never
// fatal: the order itself is already the authoritative response.
func (s *OrderService) populateUser(ctx context.Context, order *models.Order) {
	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		s.loggerFromContext(ctx).Warn("failed to populate order user", "order_id", order.ID, "error", err)
		return
	}
	order.User = user.Public()
}
