package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shopkartapp/shopkart/internal/cache"
	"github.com/shopkartapp/shopkart/internal/config"
	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/models"
	"github.com/shopkartapp/shopkart/internal/razorpay"
	"github.com/shopkartapp/shopkart/internal/services"
)

type fakeOrderStore struct {
	orders      map[uuid.UUID]*models.Order
	updateCalls int
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: map[uuid.UUID]*models.Order{}}
	for _, order := range orders {
		s.orders[order.ID] = order
	}
	return s
}

func (s *fakeOrderStore) Create(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New()
	order.OrderNumber = fmt.Sprintf("ORD-%d-%06d", time.Now().Year(), len(s.orders)+1)
	order.Status = models.StatusPending
	order.PaymentStatus = models.PaymentPending
	order.StatusHistory = []models.StatusChange{{Status: models.StatusPending, Timestamp: time.Now().UTC()}}
	s.orders[order.ID] = order
	return nil
}

func (s *fakeOrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	if razorpayOrderID == "" {
		return nil, db.ErrOrderNotFound
	}
	for _, order := range s.orders {
		if order.RazorpayOrderID == razorpayOrderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, db.ErrOrderNotFound
}

func (s *fakeOrderStore) Update(ctx context.Context, orderID uuid.UUID, patch db.OrderPatch) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	s.updateCalls++

	if patch.Status != nil && *patch.Status != order.Status {
		order.Status = *patch.Status
		order.StatusHistory = append(order.StatusHistory, models.StatusChange{
			Status:    *patch.Status,
			Timestamp: time.Now().UTC(),
			Note:      patch.StatusNote,
		})
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
	if patch.CancellationReason != nil {
		order.CancellationReason = *patch.CancellationReason
	}

	copied := *order
	return &copied, nil
}

type fakeUserStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
	for _, user := range users {
		s.byEmail[user.Email] = user
		s.byID[user.ID] = user
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return db.ErrEmailTaken
	}
	user.ID = uuid.New()
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) Upsert(ctx context.Context, user *models.User) error {
	if existing, ok := s.byEmail[user.Email]; ok {
		user.ID = existing.ID
	} else {
		user.ID = uuid.New()
	}
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, userID uuid.UUID, patch db.UserPatch) (*models.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) RecordLogin(ctx context.Context, userID uuid.UUID, remoteIP string) error {
	return nil
}

type fakeGateway struct {
	secret string
}

func (g *fakeGateway) Configured() bool { return g.secret != "" }
func (g *fakeGateway) KeySecret() string {
	return g.secret
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.GatewayOrder, error) {
	if g.secret == "" {
		return nil, razorpay.ErrNotConfigured
	}
	if currency == "" {
		currency = "INR"
	}
	return &razorpay.GatewayOrder{ID: "order_gw_new", Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

type testEnv struct {
	handlers   *Handlers
	orderStore *fakeOrderStore
	userStore  *fakeUserStore
}

func newTestEnv(t *testing.T, cfg *config.Config, orders ...*models.Order) *testEnv {
	t.Helper()

	if cfg == nil {
		cfg = &config.Config{
			RazorpayKeySecret:     "test_key_secret",
			RazorpayWebhookSecret: "whsec_test",
			JWTSecret:             "test-jwt-secret",
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orderStore := newFakeOrderStore(orders...)
	userStore := newFakeUserStore()
	gateway := &fakeGateway{secret: cfg.RazorpayKeySecret}

	cacheProvider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("failed to build cache provider: %v", err)
	}
	t.Cleanup(func() { _ = cacheProvider.Close() })

	orderService := services.NewOrderService(orderStore, userStore, logger)
	paymentService := services.NewPaymentService(orderStore, gateway, nil, logger)
	userService := services.NewUserService(userStore, cfg.JWTSecret, logger)

	return &testEnv{
		handlers: &Handlers{
			config:         cfg,
			orderService:   orderService,
			paymentService: paymentService,
			userService:    userService,
			cacheProvider:  cacheProvider,
			razorpayRouter: NewRazorpayEventRouter(paymentService, logger),
			logger:         logger,
		},
		orderStore: orderStore,
		userStore:  userStore,
	}
}
