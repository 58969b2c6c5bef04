package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	v := NewSignatureVerifier("test-secret")

	sig := sign("test-secret", "order_abc", "pay_xyz")
	assert.True(t, v.Verify("order_abc", "pay_xyz", sig))
}

func TestVerify_RejectsBadSignatures(t *testing.T) {
	v := NewSignatureVerifier("test-secret")

	// Signed with the wrong secret.
	assert.False(t, v.Verify("order_abc", "pay_xyz", sign("wrong-secret", "order_abc", "pay_xyz")))

	// Signature for a different order.
	assert.False(t, v.Verify("order_abc", "pay_xyz", sign("test-secret", "order_other", "pay_xyz")))

	// Garbage.
	assert.False(t, v.Verify("order_abc", "pay_xyz", "deadbeef"))
	assert.False(t, v.Verify("order_abc", "pay_xyz", ""))
}
