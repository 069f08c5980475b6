package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ninepay-gateway/internal/environment"
	"ninepay-gateway/internal/logger"
	"ninepay-gateway/internal/metrics"
	"ninepay-gateway/internal/signing"
	"ninepay-gateway/internal/transport"

	"go.uber.org/zap"
)

const (
	opCreatePayment = "create_payment"
	opInquiry       = "inquiry"
	opRefund        = "refund"
	opPayerAuth     = "payer_auth"
	opAuthorizeCard = "authorize_card"
	opReverseCard   = "reverse_card"
	opCapture       = "capture"

	pathCreatePayment = "/payments/create"
	pathPortal        = "/portal"
	pathRefund        = "/refunds/create"
	pathPayerAuth     = "/v2/payments/payer-auth"
	pathAuthorizeCard = "/v2/payments/authorize"
	pathReverseCard   = "/v2/payments/reverse-auth"
	pathCapture       = "/v2/payments/capture"

	msgMissingFields = "Missing required fields"
)

var errEmptyResponse = errors.New("empty response from transport")

type ninePayGateway struct {
	clientID    string
	secretKey   string
	checksumKey string
	endpoint    string
	client      Doer
	metrics     *metrics.Recorder
	now         func() time.Time
}

// ----------------- Constructor -----------------

// NewNinePayGateway validates cfg and returns a gateway bound to the endpoint
// of cfg.Env. A nil doer uses a default transport.Client; a nil recorder
// disables metrics.
func NewNinePayGateway(cfg Config, doer Doer, recorder *metrics.Recorder) (Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if doer == nil {
		doer = transport.NewClient(nil)
	}

	endpoint := environment.Endpoint(cfg.Env)
	logger.L().Info("NinePay gateway configured",
		zap.String("endpoint", endpoint),
		zap.String("merchant_id", cfg.MerchantID),
		logger.Secret("secret_key", cfg.SecretKey),
		logger.Secret("checksum_key", cfg.ChecksumKey),
	)

	return &ninePayGateway{
		clientID:    cfg.MerchantID,
		secretKey:   cfg.SecretKey,
		checksumKey: cfg.ChecksumKey,
		endpoint:    endpoint,
		client:      doer,
		metrics:     recorder,
		now:         time.Now,
	}, nil
}

// ----------------- CreatePayment -----------------

func (g *ninePayGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Response, error) {
	log := logger.ForGateway(ctx, opCreatePayment)

	if !req.complete() {
		log.Warn("Payment request rejected before signing")
		g.metrics.ObserveRequest(opCreatePayment, metrics.OutcomeRejected, 0)
		return failed(msgMissingFields), nil
	}

	ts := g.timestamp()
	payload := req.ToPayload()
	payload["merchantKey"] = g.clientID
	payload["time"] = ts

	// The portal flow is signed over the params even though it is
	// delivered as a browser redirect.
	message, err := signing.NewMessage(http.MethodPost, g.endpoint+pathCreatePayment, ts).
		WithParams(payload).
		Build()
	if err != nil {
		g.metrics.ObserveRequest(opCreatePayment, metrics.OutcomeError, 0)
		return nil, &Error{Op: opCreatePayment, Err: err}
	}
	signature := signing.Sign(message, g.secretKey)

	encoded, err := encodePayload(payload)
	if err != nil {
		log.Error("Failed to encode portal payload", zap.Error(err))
		g.metrics.ObserveRequest(opCreatePayment, metrics.OutcomeError, 0)
		return nil, &Error{Op: opCreatePayment, Err: err}
	}

	query := url.Values{}
	query.Set("baseEncode", encoded)
	query.Set("signature", signature)
	redirectURL := g.endpoint + pathPortal + "?" + query.Encode()

	log.Info("Portal redirect created",
		zap.String("request_code", req.RequestCode),
		zap.String("amount", req.Amount),
	)
	g.metrics.ObserveRequest(opCreatePayment, metrics.OutcomeSuccess, 0)

	return &Response{
		Success: true,
		Data:    map[string]any{"redirect_url": redirectURL},
		Message: "OK",
	}, nil
}

// ----------------- Inquiry -----------------

func (g *ninePayGateway) Inquiry(ctx context.Context, transactionID string) (*Response, error) {
	if transactionID == "" {
		logger.ForGateway(ctx, opInquiry).Warn("Inquiry rejected: empty transaction id")
		g.metrics.ObserveRequest(opInquiry, metrics.OutcomeRejected, 0)
		return failed(msgMissingFields), nil
	}

	ts := g.timestamp()
	target := g.endpoint + "/v2/payments/" + url.PathEscape(transactionID) + "/inquire"

	message, err := signing.NewMessage(http.MethodGet, target, ts).Build()
	if err != nil {
		return nil, &Error{Op: opInquiry, Err: err}
	}
	headers := g.headers(ts, signing.Sign(message, g.secretKey))

	return g.dispatch(ctx, opInquiry, target, func() (*transport.Response, error) {
		return g.client.Get(ctx, target, headers)
	}), nil
}

// ----------------- Direct API calls -----------------

func (g *ninePayGateway) Refund(ctx context.Context, req *RefundRequest) (*Response, error) {
	return g.sendRequest(ctx, opRefund, pathRefund, req)
}

func (g *ninePayGateway) PayerAuth(ctx context.Context, req *PayerAuthRequest) (*Response, error) {
	if req != nil {
		logCard(ctx, opPayerAuth, req.RequestID, &req.Card)
	}
	return g.sendRequest(ctx, opPayerAuth, pathPayerAuth, req)
}

func (g *ninePayGateway) AuthorizeCardPayment(ctx context.Context, req *AuthorizeCardPaymentRequest) (*Response, error) {
	if req != nil {
		logCard(ctx, opAuthorizeCard, req.RequestID, req.Card)
	}
	return g.sendRequest(ctx, opAuthorizeCard, pathAuthorizeCard, req)
}

func (g *ninePayGateway) ReverseCardPayment(ctx context.Context, req *ReverseCardPaymentRequest) (*Response, error) {
	return g.sendRequest(ctx, opReverseCard, pathReverseCard, req)
}

func (g *ninePayGateway) Capture(ctx context.Context, req *CapturePaymentRequest) (*Response, error) {
	return g.sendRequest(ctx, opCapture, pathCapture, req)
}

// sendRequest posts the JSON payload of req. The exact bytes sent are the
// bytes hashed into the signature.
func (g *ninePayGateway) sendRequest(ctx context.Context, op, path string, req Payloader) (*Response, error) {
	if isNil(req) {
		g.metrics.ObserveRequest(op, metrics.OutcomeRejected, 0)
		return failed(msgMissingFields), nil
	}

	body, err := json.Marshal(req.ToPayload())
	if err != nil {
		g.metrics.ObserveRequest(op, metrics.OutcomeError, 0)
		return nil, &Error{Op: op, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	ts := g.timestamp()
	target := g.endpoint + path

	message, err := signing.NewMessage(http.MethodPost, target, ts).WithBody(body).Build()
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	headers := g.headers(ts, signing.Sign(message, g.secretKey))

	return g.dispatch(ctx, op, target, func() (*transport.Response, error) {
		return g.client.Post(ctx, target, body, headers)
	}), nil
}

// dispatch runs call and normalizes its result. A transport error becomes a
// status 0 response instead of being returned.
func (g *ninePayGateway) dispatch(ctx context.Context, op, target string, call func() (*transport.Response, error)) *Response {
	log := logger.ForGateway(ctx, op).With(zap.String("url", target))
	timer := metrics.StartTimer()

	raw, err := call()
	if err == nil && raw == nil {
		err = errEmptyResponse
	}
	elapsed := timer.Duration()
	if err != nil {
		log.Error("NinePay request failed", zap.Error(err), zap.Duration("duration", elapsed))
		g.metrics.ObserveRequest(op, metrics.OutcomeTransport, elapsed)
		raw = transportFailure(err)
	}

	res := normalize(raw)
	if err == nil {
		outcome := metrics.OutcomeSuccess
		if !res.Success {
			outcome = metrics.OutcomeFailure
		}
		log.Info("NinePay response received",
			zap.Int("status", raw.Status),
			zap.Bool("success", res.Success),
			zap.String("message", res.Message),
			zap.Duration("duration", elapsed),
		)
		g.metrics.ObserveRequest(op, outcome, elapsed)
	}
	return res
}

// ----------------- Verify -----------------

func (g *ninePayGateway) Verify(result, checksum string) bool {
	valid := signing.VerifyChecksum(result, checksum, g.checksumKey)
	g.metrics.ObserveVerification(valid)
	return valid
}

func (g *ninePayGateway) DecodeResult(result string) string {
	return signing.DecodeURLSafe(result)
}

// ----------------- Helpers -----------------

func (g *ninePayGateway) timestamp() string {
	return strconv.FormatInt(g.now().Unix(), 10)
}

func (g *ninePayGateway) headers(ts, signature string) map[string]string {
	return map[string]string{
		"Date": ts,
		"Authorization": fmt.Sprintf(
			"Signature Algorithm=HS256,Credential=%s,SignedHeaders=,Signature=%s",
			g.clientID,
			signature,
		),
	}
}

// encodePayload renders payload as base64 JSON, leaving non-ASCII text and
// HTML characters unescaped.
func encodePayload(payload map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func logCard(ctx context.Context, op, requestID string, card *Card) {
	if card == nil {
		return
	}
	logger.ForGateway(ctx, op).Info("Card payment submitted",
		zap.String("request_id", requestID),
		zap.String("card", logger.MaskCard(card.Number)),
	)
}

func isNil(p Payloader) bool {
	switch r := p.(type) {
	case nil:
		return true
	case *RefundRequest:
		return r == nil
	case *PayerAuthRequest:
		return r == nil
	case *AuthorizeCardPaymentRequest:
		return r == nil
	case *ReverseCardPaymentRequest:
		return r == nil
	case *CapturePaymentRequest:
		return r == nil
	}
	return false
}
