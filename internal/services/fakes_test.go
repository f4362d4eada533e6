package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/email"
	"github.com/shopkartapp/shopkart/internal/models"
	"github.com/shopkartapp/shopkart/internal/razorpay"
)

type fakeOrderStore struct {
	orders map[uuid.UUID]*models.Order

	createErr error
	updateErr error

	updateCalls []db.OrderPatch
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: map[uuid.UUID]*models.Order{}}
	for _, order := range orders {
		s.orders[order.ID] = order
	}
	return s
}

func (s *fakeOrderStore) Create(ctx context.Context, order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
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
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	s.updateCalls = append(s.updateCalls, patch)

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

	createErr error
	logins    int
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
	if s.createErr != nil {
		return s.createErr
	}
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
	if patch.Address != nil {
		user.Address = patch.Address
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) RecordLogin(ctx context.Context, userID uuid.UUID, remoteIP string) error {
	s.logins++
	return nil
}

type fakeGateway struct {
	configured bool
	secret     string

	order     *razorpay.GatewayOrder
	createErr error
}

func (g *fakeGateway) Configured() bool {
	return g.configured
}

func (g *fakeGateway) KeySecret() string {
	return g.secret
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.GatewayOrder, error) {
	if !g.configured {
		return nil, razorpay.ErrNotConfigured
	}
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.order != nil {
		return g.order, nil
	}
	if currency == "" {
		currency = "INR"
	}
	return &razorpay.GatewayOrder{
		ID:       "order_fake",
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type fakeEmailSender struct {
	sent    int
	lastTo  string
	sendErr error
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, message *email.Email) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent++
	f.lastTo = message.To
	return nil
}
