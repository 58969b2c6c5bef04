package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier validates Razorpay checkout signatures. The gateway
// signs "orderID|paymentID" with HMAC-SHA256 keyed by the key secret
// and sends the hex digest back with the checkout result.
type SignatureVerifier struct {
	keySecret []byte
}

// NewSignatureVerifier creates a verifier for the given key secret.
func NewSignatureVerifier(keySecret string) *SignatureVerifier {
	return &SignatureVerifier{keySecret: []byte(keySecret)}
}

// Verify reports whether the signature matches the order and payment
// IDs. Comparison is constant-time.
func (v *SignatureVerifier) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
