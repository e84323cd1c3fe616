package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/shiv90154/Lms-sub002/backend/config"
)

// Gateway wraps the Razorpay client. Amounts are rupees on our side and
// paise on the wire.
type Gateway struct {
	client *razorpay.Client
	secret string
}

func NewGateway(cfg *config.Config) *Gateway {
	return &Gateway{
		client: razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpaySecret),
		secret: cfg.RazorpaySecret,
	}
}

func (g *Gateway) Enabled() bool {
	return g.secret != ""
}

// CreateOrder registers the order with the gateway and returns the gateway
// order id the client checkout needs.
func (g *Gateway) CreateOrder(amount float64, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": "INR",
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok {
		return "", fmt.Errorf("razorpay order create: missing order id in response")
	}
	return orderID, nil
}

// VerifySignature checks the checkout callback: the gateway signs
// "<orderID>|<paymentID>" with the key secret, HMAC-SHA256, hex encoded.
func (g *Gateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(gatewayOrderID, paymentID, signature, g.secret)
}

func VerifySignature(gatewayOrderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
