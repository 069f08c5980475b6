package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign returns base64(HMAC-SHA256(key, message)).
func Sign(message, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares it in constant time.
func Verify(signature, message, key string) bool {
	expected := Sign(message, key)
	return hmac.Equal([]byte(expected), []byte(signature))
}
