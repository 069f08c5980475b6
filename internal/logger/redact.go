package logger

import (
	"strings"

	"go.uber.org/zap"
)

const redacted = "[REDACTED]"

// MaskCard keeps the first six and last four digits of a card number.
func MaskCard(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	if len(digits) < 12 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:6] + strings.Repeat("*", len(digits)-10) + digits[len(digits)-4:]
}

// Secret logs key with a placeholder instead of the value. Empty values stay
// empty so missing configuration is still visible.
func Secret(key, value string) zap.Field {
	if value == "" {
		return zap.String(key, "")
	}
	return zap.String(key, redacted)
}
