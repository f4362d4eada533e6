package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	RazorpayKeyID         string `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret     string `env:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET"`
	GatewayTimeout        time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM"`

	SentryDSN string `env:"SENTRY_DSN"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"4000"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasKeyID := strings.TrimSpace(c.RazorpayKeyID) != ""
	hasKeySecret := strings.TrimSpace(c.RazorpayKeySecret) != ""
	if hasKeyID != hasKeySecret {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set together")
	}

	if strings.TrimSpace(c.ResendAPIKey) != "" && strings.TrimSpace(c.EmailFrom) == "" {
		return fmt.Errorf("EMAIL_FROM is required when RESEND_API_KEY is set")
	}

	return nil
}

// WebhookSecret returns the secret used to authenticate webhook deliveries,
// falling back to the payment key secret when no dedicated one is set.
func (c *Config) WebhookSecret() string {
	if c.RazorpayWebhookSecret != "" {
		return c.RazorpayWebhookSecret
	}
	return c.RazorpayKeySecret
}
