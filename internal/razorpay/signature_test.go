package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestVerifyPaymentSignature(t *testing.T) {
	t.Parallel()

	const secret = "test_key_secret"
	valid := SignPayment("order_abc123", "pay_def456", secret)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		claimed   string
		secret    string
		want      bool
	}{
		{
			name:      "valid signature",
			orderID:   "order_abc123",
			paymentID: "pay_def456",
			claimed:   valid,
			secret:    secret,
			want:      true,
		},
		{
			name:      "different payment id",
			orderID:   "order_abc123",
			paymentID: "pay_other",
			claimed:   valid,
			secret:    secret,
			want:      false,
		},
		{
			name:      "different order id",
			orderID:   "order_other",
			paymentID: "pay_def456",
			claimed:   valid,
			secret:    secret,
			want:      false,
		},
		{
			name:      "wrong secret",
			orderID:   "order_abc123",
			paymentID: "pay_def456",
			claimed:   valid,
			secret:    "another_secret",
			want:      false,
		},
		{
			name:      "empty claimed signature",
			orderID:   "order_abc123",
			paymentID: "pay_def456",
			claimed:   "",
			secret:    secret,
			want:      false,
		},
		{
			name:      "truncated signature",
			orderID:   "order_abc123",
			paymentID: "pay_def456",
			claimed:   valid[:len(valid)-2],
			secret:    secret,
			want:      false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := VerifyPaymentSignature(tc.orderID, tc.paymentID, tc.claimed, tc.secret)
			if got != tc.want {
				t.Fatalf("VerifyPaymentSignature() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSignPayment_MessageLayout(t *testing.T) {
	t.Parallel()

	// The signed message is "<orderID>|<paymentID>", so swapping the two
	// inputs must produce a different signature.
	const secret = "s3cret"
	a := SignPayment("order_1", "pay_2", secret)
	b := SignPayment("pay_2", "order_1", secret)
	if a == b {
		t.Fatal("expected distinct signatures for swapped order/payment ids")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("order_1|pay_2"))
	if want := hex.EncodeToString(mac.Sum(nil)); a != want {
		t.Fatalf("SignPayment() = %q, want %q", a, want)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	t.Parallel()

	const secret = "whsec_test"
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(body, signature, secret) {
		t.Fatal("expected valid signature to verify")
	}
	if VerifyWebhookSignature(append([]byte(" "), body...), signature, secret) {
		t.Fatal("expected signature over different bytes to fail")
	}
	if VerifyWebhookSignature(body, signature, "other_secret") {
		t.Fatal("expected wrong secret to fail")
	}
	if VerifyWebhookSignature(body, "", secret) {
		t.Fatal("expected empty signature to fail")
	}
}
