package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/logging"
	"github.com/shopkartapp/shopkart/internal/models"
)

const (
	minPasswordLength = 6
	tokenLifetime     = 24 * time.Hour
)

// UserService implements the user directory: registration, login, guest
// upsert, and profile reads consumed by order creation.
type UserService struct {
	users     userStore
	jwtSecret []byte
	logger    *slog.Logger
}

func NewUserService(users userStore, jwtSecret string, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

func (s *UserService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type SignupInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	Address     *models.Address
	DateOfBirth time.Time
	Gender      string
}

func (s *UserService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:             input.Name,
		Email:            input.Email,
		PasswordHash:     string(hash),
		Phone:            input.Phone,
		Address:          input.Address,
		DateOfBirth:      input.DateOfBirth,
		Gender:           input.Gender,
		IsRegistered:     true,
		IsActive:         true,
		RegistrationDate: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.loggerFromContext(ctx).Info("user registered", "user_id", user.ID, "email", user.Email)
	return user.Public(), nil
}

// Login authenticates by email and password and returns the user with a
// signed session token.
func (s *UserService) Login(ctx context.Context, emailAddr, password, remoteIP string) (*models.User, string, error) {
	logger := s.loggerFromContext(ctx)

	if emailAddr == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if user.PasswordHash == "" {
		return nil, "", ErrNotRegistered
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("failed login attempt", "email", user.Email)
		return nil, "", ErrInvalidCredentials
	}

	if err := s.users.RecordLogin(ctx, user.ID, remoteIP); err != nil {
		logger.Warn("failed to record login", "user_id", user.ID, "error", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	logger.Info("user logged in", "user_id", user.ID)
	return user.Public(), token, nil
}

type UpsertUserInput struct {
	Name    string
	Email   string
	Phone   string
	Address *models.Address
}

// Upsert creates or refreshes a guest profile keyed by email.
func (s *UserService) Upsert(ctx context.Context, input UpsertUserInput) (*models.User, error) {
	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	user := &models.User{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *UserService) GetByEmail(ctx context.Context, emailAddr string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch db.UserPatch) (*models.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *UserService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
