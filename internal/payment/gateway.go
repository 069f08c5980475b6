package payment

import (
	"context"
	"fmt"

	"ninepay-gateway/internal/transport"
)

// Gateway is the 9Pay API surface used by the service.
type Gateway interface {
	// CreatePayment returns a signed portal redirect URL in Data["redirect_url"].
	// It never performs a network call.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Response, error)
	Inquiry(ctx context.Context, transactionID string) (*Response, error)
	Refund(ctx context.Context, req *RefundRequest) (*Response, error)
	PayerAuth(ctx context.Context, req *PayerAuthRequest) (*Response, error)
	AuthorizeCardPayment(ctx context.Context, req *AuthorizeCardPaymentRequest) (*Response, error)
	ReverseCardPayment(ctx context.Context, req *ReverseCardPaymentRequest) (*Response, error)
	Capture(ctx context.Context, req *CapturePaymentRequest) (*Response, error)

	// Verify checks the checksum sent alongside a result payload.
	Verify(result, checksum string) bool
	// DecodeResult decodes a verified result payload. "" signals failure.
	DecodeResult(result string) string
}

// Doer sends requests to the gateway. *transport.Client implements it.
type Doer interface {
	Get(ctx context.Context, url string, headers map[string]string) (*transport.Response, error)
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (*transport.Response, error)
}

// Config holds the merchant credentials issued by 9Pay.
type Config struct {
	MerchantID  string
	SecretKey   string
	ChecksumKey string
	Env         string
}

func (c Config) Validate() error {
	switch {
	case c.MerchantID == "":
		return &Error{Op: "config", Err: fmt.Errorf("%w: merchant id is required", ErrInvalidConfig)}
	case c.SecretKey == "":
		return &Error{Op: "config", Err: fmt.Errorf("%w: secret key is required", ErrInvalidConfig)}
	case c.ChecksumKey == "":
		return &Error{Op: "config", Err: fmt.Errorf("%w: checksum key is required", ErrInvalidConfig)}
	}
	return nil
}
