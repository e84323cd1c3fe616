package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	orderID := "order_MkWd3e8f2Kq1"
	paymentID := "pay_9A1bC2dE3f"

	valid := sign(orderID, paymentID, secret)

	assert.True(t, VerifySignature(orderID, paymentID, valid, secret))
	assert.False(t, VerifySignature(orderID, paymentID, valid, "other_secret"))
	assert.False(t, VerifySignature(orderID, "pay_other", valid, secret))
	assert.False(t, VerifySignature(orderID, paymentID, "deadbeef", secret))
	assert.False(t, VerifySignature(orderID, paymentID, "", secret))
}
