package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) (*http.Response, error)

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(rt MockRoundTripper) *Client {
	return NewClient(&http.Client{Transport: rt})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("DecodesJSONObject", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "https://sand-payment.9pay.vn/v2/payments/1/inquire", req.URL.String())
			assert.Equal(t, "1700000000", req.Header.Get("Date"))
			assert.Empty(t, req.Header.Get("Content-Type"))
			return jsonResponse(http.StatusOK, `{"message":"Success","status":5}`), nil
		})

		res, err := c.Get(context.Background(), "https://sand-payment.9pay.vn/v2/payments/1/inquire",
			map[string]string{"Date": "1700000000"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, map[string]any{"message": "Success", "status": float64(5)}, res.Body)
		assert.Equal(t, "application/json", res.Headers.Get("Content-Type"))
	})

	t.Run("RawBodyWhenNotJSON", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadGateway, "<html>bad gateway</html>"), nil
		})

		res, err := c.Get(context.Background(), "https://example.com", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, res.Status)
		assert.Equal(t, "<html>bad gateway</html>", res.Body)
	})

	t.Run("ScalarJSONKeptRaw", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `"ok"`), nil
		})

		res, err := c.Get(context.Background(), "https://example.com", nil)
		require.NoError(t, err)
		assert.Equal(t, `"ok"`, res.Body)
	})

	t.Run("NetworkError", func(t *testing.T) {
		c := newTestClient(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		res, err := c.Get(context.Background(), "https://example.com", nil)
		assert.Nil(t, res)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestClient_Post(t *testing.T) {
	body := []byte(`{"request_id":"req_1"}`)

	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, "Signature Algorithm=HS256", req.Header.Get("Authorization"))

		sent, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, body, sent)

		return jsonResponse(http.StatusCreated, `{"data":{"id":1}}`), nil
	})

	res, err := c.Post(context.Background(), "https://example.com/refunds/create", body,
		map[string]string{"Authorization": "Signature Algorithm=HS256"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, map[string]any{"data": map[string]any{"id": float64(1)}}, res.Body)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(nil)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}
