package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopkartapp/shopkart/internal/cache"
	"github.com/shopkartapp/shopkart/internal/config"
	"github.com/shopkartapp/shopkart/internal/logging"
	"github.com/shopkartapp/shopkart/internal/services"
)

const maxWebhookBodyBytes = 1 << 20 // 1 MB

// Handlers provides the JSON HTTP handlers for the storefront API.
type Handlers struct {
	config         *config.Config
	db             *pgxpool.Pool
	orderService   *services.OrderService
	paymentService *services.PaymentService
	userService    *services.UserService
	cacheProvider  cache.Provider
	razorpayRouter *RazorpayEventRouter
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	DB             *pgxpool.Pool
	OrderService   *services.OrderService
	PaymentService *services.PaymentService
	UserService    *services.UserService
	CacheProvider  cache.Provider
	RazorpayRouter *RazorpayEventRouter
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.OrderService == nil {
		return nil, fmt.Errorf("handlers dependencies: orderService is required")
	}
	if deps.PaymentService == nil {
		return nil, fmt.Errorf("handlers dependencies: paymentService is required")
	}
	if deps.UserService == nil {
		return nil, fmt.Errorf("handlers dependencies: userService is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.RazorpayRouter == nil {
		return nil, fmt.Errorf("handlers dependencies: razorpayRouter is required")
	}

	return &Handlers{
		config:         deps.Config,
		db:             deps.DB,
		orderService:   deps.OrderService,
		paymentService: deps.PaymentService,
		userService:    deps.UserService,
		cacheProvider:  deps.CacheProvider,
		razorpayRouter: deps.RazorpayRouter,
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		respondMessage(w, http.StatusServiceUnavailable, "Database unhealthy")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondMessage writes the human-readable error shape every failure path
// shares.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close() //nolint:errcheck
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
