// Package dispatcher implements the Event Dispatcher of §4.6: HMAC-signed,
// retried delivery of lifecycle events to registered webhook subscribers.
package dispatcher

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// Sign computes the §4.6 `sha256=<hex>` signature of body under secret.
func Sign(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// Verify checks an inbound X-Signature header against body in constant
// time, and rejects timestamps older than the replay tolerance window.
func Verify(secret string, body []byte, signature string, timestampHeader string, now time.Time, tolerance time.Duration) error {
	var ts int64
	if _, err := fmt.Sscanf(timestampHeader, "%d", &ts); err != nil {
		return fmt.Errorf("dispatcher: invalid X-Timestamp header")
	}
	skew := now.Unix() - ts
	if skew < 0 {
		skew = -skew
	}
	if time.Duration(skew)*time.Second > tolerance {
		return fmt.Errorf("dispatcher: timestamp outside replay tolerance")
	}

	expected := Sign(secret, body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return fmt.Errorf("dispatcher: signature mismatch")
	}
	return nil
}
