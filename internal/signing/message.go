package signing

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

var ErrMissingURIOrDate = errors.New("signing: missing uri/date")

// Message is the signable view of one outbound request. It is a plain value:
// the With* helpers return copies, so a Message may be shared freely.
type Message struct {
	Method  string
	URI     string
	Date    string
	Headers map[string]string
	Params  map[string]any
	// Body is hashed instead of Params for POST requests. nil means no body.
	Body []byte
}

func NewMessage(method, uri, date string) Message {
	return Message{Method: method, URI: uri, Date: date}
}

func (m Message) WithHeaders(headers map[string]string) Message {
	m.Headers = headers
	return m
}

func (m Message) WithParams(params map[string]any) Message {
	m.Params = params
	return m
}

func (m Message) WithBody(body []byte) Message {
	m.Body = body
	return m
}

// Build renders the canonical string:
//
//	METHOD\nURI\nDATE[\nHEADERS][\nPAYLOAD]
//
// A POST with a body signs base64(sha256(body)) and ignores Params.
func (m Message) Build() (string, error) {
	if m.URI == "" || m.Date == "" {
		return "", ErrMissingURIOrDate
	}

	components := []string{m.Method, m.URI, m.Date}

	headers := make(map[string]any, len(m.Headers))
	for k, v := range m.Headers {
		headers[k] = v
	}
	if h := buildQuery(headers); h != "" {
		components = append(components, h)
	}

	var payload string
	if m.Method == http.MethodPost && m.Body != nil {
		payload = canonicalBody(m.Body)
	} else {
		payload = buildQuery(m.Params)
	}
	if payload != "" {
		components = append(components, payload)
	}

	return strings.Join(components, "\n"), nil
}

// String returns the canonical string, or "" when the message is invalid.
func (m Message) String() string {
	s, err := m.Build()
	if err != nil {
		return ""
	}
	return s
}

func canonicalBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// buildQuery renders params as a form-encoded query with top-level keys
// sorted. Nested maps and slices use bracket notation (a[b]=c, a[0]=c).
func buildQuery(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		pairs = appendPairs(pairs, FormEscape(k), params[k])
	}
	return strings.Join(pairs, "&")
}

func appendPairs(pairs []string, key string, value any) []string {
	switch v := value.(type) {
	case nil:
		return pairs
	case map[string]any:
		for _, k := range sortedKeys(v) {
			pairs = appendPairs(pairs, key+FormEscape("["+k+"]"), v[k])
		}
		return pairs
	case map[string]string:
		for _, k := range sortedStringKeys(v) {
			pairs = appendPairs(pairs, key+FormEscape("["+k+"]"), v[k])
		}
		return pairs
	case []any:
		for i, item := range v {
			pairs = appendPairs(pairs, key+FormEscape("["+strconv.Itoa(i)+"]"), item)
		}
		return pairs
	case []string:
		for i, item := range v {
			pairs = appendPairs(pairs, key+FormEscape("["+strconv.Itoa(i)+"]"), item)
		}
		return pairs
	}
	return append(pairs, key+"="+FormEscape(scalar(value)))
}

func scalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		return string(v)
	}
	return fmt.Sprint(value)
}

// FormEscape applies application/x-www-form-urlencoded escaping the way the
// gateway does: space becomes '+' and '~' is percent-encoded.
func FormEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "~", "%7E")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
