package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ninepay-gateway/internal/logger"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Response is a completed HTTP exchange. Body holds the decoded JSON value
// when the payload was valid JSON, otherwise the raw string.
type Response struct {
	Status  int
	Body    any
	Headers http.Header
}

// Client issues gateway requests. Non-2xx statuses are returned as responses,
// only failures to complete the exchange are errors.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, headers)
}

// Post sends body verbatim as application/json.
func (c *Client) Post(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, body, headers)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", method), zap.String("url", url))

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		log.Error("Failed building request", zap.Error(err))
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Gateway request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Body:    decodeBody(raw),
		Headers: resp.Header,
	}, nil
}

func decodeBody(raw []byte) any {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return decoded
	}
	return string(raw)
}
