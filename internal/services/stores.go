package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/models"
	"github.com/shopkartapp/shopkart/internal/razorpay"
)

// Store interfaces are satisfied by the db package; tests substitute fakes.

type orderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	Update(ctx context.Context, orderID uuid.UUID, patch db.OrderPatch) (*models.Order, error)
}

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch db.UserPatch) (*models.User, error)
	RecordLogin(ctx context.Context, userID uuid.UUID, remoteIP string) error
}

type gatewayClient interface {
	Configured() bool
	KeySecret() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.GatewayOrder, error)
}
