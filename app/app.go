package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"

	"github.com/shopkartapp/shopkart/internal/cache"
	"github.com/shopkartapp/shopkart/internal/config"
	"github.com/shopkartapp/shopkart/internal/db"
	"github.com/shopkartapp/shopkart/internal/email"
	"github.com/shopkartapp/shopkart/internal/handlers"
	"github.com/shopkartapp/shopkart/internal/razorpay"
	"github.com/shopkartapp/shopkart/internal/services"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.1,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	orderStore := db.NewOrderStore(database)
	userStore := db.NewUserStore(database)

	gateway := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayTimeout)
	if !gateway.Configured() {
		logger.Warn("razorpay keys not configured; payment endpoints will reject requests")
	}

	emailProvider := email.NewProvider(email.Config{
		APIKey: cfg.ResendAPIKey,
		From:   cfg.EmailFrom,
	})

	orderService := services.NewOrderService(orderStore, userStore, logger.With("component", "order_service"))
	paymentService := services.NewPaymentService(orderStore, gateway, emailProvider, logger.With("component", "payment_service"))
	userService := services.NewUserService(userStore, cfg.JWTSecret, logger.With("component", "user_service"))

	razorpayRouter := handlers.NewRazorpayEventRouter(paymentService, logger.With("component", "razorpay_router"))

	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		DB:             database,
		OrderService:   orderService,
		PaymentService: paymentService,
		UserService:    userService,
		CacheProvider:  cacheProvider,
		RazorpayRouter: razorpayRouter,
		Logger:         logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		CacheProvider: cacheProvider,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	sentry.Flush(2 * time.Second)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case "text", "":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel}))
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
