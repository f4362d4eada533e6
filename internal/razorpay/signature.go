// Package razorpay wraps the Razorpay API and its HMAC signature scheme.
package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayment computes the hex HMAC-SHA256 signature Razorpay issues for a
// completed payment: the key is the API secret, the message is
// "<orderID>|<paymentID>".
func SignPayment(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature reports whether claimed matches the signature the
// gateway would have issued for this order/payment pair. The comparison is
// constant time.
func VerifyPaymentSignature(orderID, paymentID, claimed, secret string) bool {
	expected := SignPayment(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(claimed))
}

// VerifyWebhookSignature checks the x-razorpay-signature of a webhook
// delivery. It must be fed the raw, unparsed body bytes: re-serializing the
// JSON can change the byte layout and invalidate the signature.
func VerifyWebhookSignature(body []byte, claimed, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(claimed))
}
