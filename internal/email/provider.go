// Package email provides transactional email delivery.
package email

import "context"

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	APIKey string
	From   string
}

// NewProvider returns the configured sender, or a no-op one when no API key
// is set so order processing never depends on email config.
func NewProvider(config Config) Provider {
	if config.APIKey == "" {
		return NoopProvider{}
	}
	return NewResendProvider(config.APIKey, config.From)
}

type NoopProvider struct{}

func (NoopProvider) SendEmail(ctx context.Context, email *Email) error {
	_ = ctx
	_ = email
	return nil
}
