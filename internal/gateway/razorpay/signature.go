package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature returns the hex HMAC-SHA256 digest Razorpay attaches
// to a captured payment: the message is orderID + "|" + paymentID keyed
// by the API secret.
func ComputeSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the expected digest and compares it with
// hmac.Equal so the comparison cost does not depend on where the inputs
// diverge.
func VerifySignature(secret, orderID, paymentID, sig string) bool {
	expected := ComputeSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(sig))
}
