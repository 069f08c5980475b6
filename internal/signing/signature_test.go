package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	message := "GET\nhttps://api.example.com/test\n2023-10-27"

	t.Run("KnownVector", func(t *testing.T) {
		assert.Equal(t, "PE3QH2hNSXGC4uPIIxnyq87xXcifEqunqy5sU4PbCR4=", Sign(message, "SECRET"))
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, Sign(message, "SECRET"), Sign(message, "SECRET"))
	})

	t.Run("EmptyInputsStillSign", func(t *testing.T) {
		sig := Sign("", "")
		assert.NotEmpty(t, sig)
		assert.True(t, Verify(sig, "", ""))
	})
}

func TestVerify(t *testing.T) {
	pairs := []struct{ message, key string }{
		{"GET\nhttps://sand-payment.9pay.vn/v2/payments/1/inquire\n1700000000", "secret"},
		{"POST\nhttps://payment.9pay.vn/refunds/create\n1700000000\nabc=", "k"},
		{"x", "a much longer secret key used for hmac"},
	}

	for _, p := range pairs {
		sig := Sign(p.message, p.key)
		assert.True(t, Verify(sig, p.message, p.key))

		tamperedMsg := []byte(p.message)
		tamperedMsg[0] ^= 0x01
		assert.False(t, Verify(sig, string(tamperedMsg), p.key))

		tamperedKey := []byte(p.key)
		tamperedKey[len(tamperedKey)-1] ^= 0x01
		assert.False(t, Verify(sig, p.message, string(tamperedKey)))
	}

	assert.False(t, Verify("", "message", "key"))
}
