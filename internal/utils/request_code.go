package utils

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxRequestCodeLength is the longest request_code 9Pay accepts.
const MaxRequestCodeLength = 30

const maxPrefixLength = 8

var ErrInvalidRequestCode = errors.New("invalid request code")

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewRequestCode returns PREFIX-YYMMDDhhmmss-XXXXXXX, at most 29 characters.
// The prefix is upper-cased and cut to 8 characters.
func NewRequestCode(prefix string, now time.Time) string {
	prefix = strings.ToUpper(prefix)
	if len(prefix) > maxPrefixLength {
		prefix = prefix[:maxPrefixLength]
	}

	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// keep codes distinct within the same second
		n := now.UnixNano()
		b = [4]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}

	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("060102150405"), codeEncoding.EncodeToString(b[:]))
}

// ValidateRequestCode accepts 1 to 30 characters of ASCII letters, digits,
// '-' and '_'.
func ValidateRequestCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRequestCode)
	}
	if len(code) > MaxRequestCodeLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidRequestCode, MaxRequestCodeLength)
	}
	for _, c := range code {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidRequestCode, c)
		}
	}
	return nil
}
