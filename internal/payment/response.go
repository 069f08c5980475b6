package payment

import (
	"fmt"
	"strconv"

	"ninepay-gateway/internal/transport"
)

// Response is the normalized outcome of a gateway operation.
type Response struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message"`
}

func failed(message string) *Response {
	return &Response{Success: false, Data: map[string]any{}, Message: message}
}

// normalize maps a raw transport response onto a Response. A 2xx status is
// success; a body that is not a JSON object is kept under Data["raw"].
func normalize(res *transport.Response) *Response {
	if res == nil {
		return failed("")
	}
	out := &Response{Success: res.Status >= 200 && res.Status < 300}

	body, ok := res.Body.(map[string]any)
	if !ok {
		out.Data = map[string]any{"raw": res.Body}
		return out
	}
	out.Data = body
	out.Message = messageString(body["message"])
	return out
}

func messageString(v any) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return m
	case float64:
		return strconv.FormatFloat(m, 'f', -1, 64)
	case bool:
		if m {
			return "1"
		}
		return ""
	}
	return fmt.Sprint(v)
}

// transportFailure is the response recorded when a request never completed.
func transportFailure(err error) *transport.Response {
	return &transport.Response{
		Status: 0,
		Body:   map[string]any{"error": err.Error()},
	}
}
