package signing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	assert.Equal(t,
		"07FB0C7F285F05DE7DBB2054BCADB33216D98BAE915B06F007990C311D380D4F",
		Checksum("some-result", "CHECKSUM"),
	)
}

func TestVerifyChecksum(t *testing.T) {
	key := "CHECKSUM"
	result := "some-result"

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, VerifyChecksum(result, Checksum(result, key), key))
	})

	t.Run("EmptyResult", func(t *testing.T) {
		assert.False(t, VerifyChecksum("", Checksum("", key), key))
	})

	t.Run("EmptyChecksum", func(t *testing.T) {
		assert.False(t, VerifyChecksum(result, "", key))
	})

	t.Run("Mismatch", func(t *testing.T) {
		assert.False(t, VerifyChecksum(result, "wrong-checksum", key))
	})

	t.Run("WrongKey", func(t *testing.T) {
		assert.False(t, VerifyChecksum(result, Checksum(result, key), "OTHER"))
	})

	t.Run("LowercaseRejected", func(t *testing.T) {
		assert.False(t, VerifyChecksum(result, strings.ToLower(Checksum(result, key)), key))
	})
}

func TestDecodeURLSafe(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"NeedsPadding", "dGVzdA", "test"},
		{"Empty", "", ""},
		{"URLSafeAlphabet", "_v8", "\xfe\xff"},
		{"AlreadyPadded", "dGVzdA==", "test"},
		{"JSON", "eyJzdGF0dXMiOjV9", `{"status":5}`},
		{"Garbage", "!!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeURLSafe(tt.input))
		})
	}
}
