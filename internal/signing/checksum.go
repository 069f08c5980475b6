package signing

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Checksum is the uppercase hex SHA-256 of result followed by checksumKey.
func Checksum(result, checksumKey string) string {
	sum := sha256.Sum256([]byte(result + checksumKey))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// VerifyChecksum authenticates an inbound result payload. Empty input never
// verifies. The comparison is exact, so a lowercase checksum is rejected.
func VerifyChecksum(result, checksum, checksumKey string) bool {
	if result == "" || checksum == "" {
		return false
	}
	expected := Checksum(result, checksumKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(checksum)) == 1
}

// DecodeURLSafe decodes URL-safe base64 with missing padding. It returns ""
// when the input cannot be decoded.
func DecodeURLSafe(input string) string {
	if r := len(input) % 4; r != 0 {
		input += strings.Repeat("=", 4-r)
	}
	input = strings.NewReplacer("-", "+", "_", "/").Replace(input)

	decoded, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return ""
	}
	return string(decoded)
}
