package razorpay

import (
	"context"
	"errors"
	"fmt"
	"time"

	razorpaysdk "github.com/razorpay/razorpay-go"
)

var (
	// ErrNotConfigured means the gateway credentials are absent. It is
	// checked eagerly, before any network call.
	ErrNotConfigured = errors.New("razorpay credentials not configured")
	// ErrGateway wraps remote provider failures (network, auth, quota).
	ErrGateway = errors.New("razorpay request failed")
)

// GatewayOrder is the provider-side payment intent an order links to via
// its razorpay_order_id.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Client struct {
	keyID     string
	keySecret string
	sdk       *razorpaysdk.Client
}

// NewClient builds a gateway client. Missing credentials are tolerated here
// and reported per call, so the process can boot without payment config.
func NewClient(keyID, keySecret string, timeout time.Duration) *Client {
	c := &Client{keyID: keyID, keySecret: keySecret}
	if c.Configured() {
		c.sdk = razorpaysdk.NewClient(keyID, keySecret)
		if timeout > 0 {
			c.sdk.SetTimeout(int16(timeout / time.Second))
		}
	}
	return c
}

func (c *Client) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

// KeySecret exposes the shared secret used for payment signature checks.
func (c *Client) KeySecret() string {
	return c.keySecret
}

// CreateOrder creates a provider-side payment intent. Amount is in the
// smallest currency unit (paise for INR); no scaling happens here. An empty
// receipt gets a time-based unique token. The call is bounded by the client
// timeout and by ctx; on timeout the local order is left untouched.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if currency == "" {
		currency = "INR"
	}
	if receipt == "" {
		receipt = fmt.Sprintf("rcpt_%d", time.Now().UnixMilli())
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := c.sdk.Order.Create(data, nil)
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrGateway, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, res.err)
		}
		return gatewayOrderFromResponse(res.body)
	}
}

func gatewayOrderFromResponse(body map[string]interface{}) (*GatewayOrder, error) {
	order := &GatewayOrder{
		ID:       stringField(body, "id"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: response missing order id", ErrGateway)
	}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	return order, nil
}

func stringField(body map[string]interface{}, key string) string {
	value, _ := body[key].(string)
	return value
}
