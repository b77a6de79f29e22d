package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/pkg/errors"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	RequestIDHeader      = "X-Request-ID"
)

// Client calls the storefront REST API. One instance is shared process-wide;
// its credential is replaced atomically on login/logout so every call issued
// after a transition observes the new value.
type Client struct {
	baseURL    string
	credential atomic.Pointer[string]
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a storefront API client
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	empty := ""
	c.credential.Store(&empty)
	return c
}

// SetCredential replaces the bearer credential attached to subsequent calls; "" clears it
func (c *Client) SetCredential(token string) {
	c.credential.Store(&token)
}

// Credential returns the bearer credential currently attached to calls
func (c *Client) Credential() string {
	return *c.credential.Load()
}

// request describes one API call
type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    interface{}
	headers map[string]string
}

// do executes req and decodes a 2xx JSON body into out (when out is non-nil).
// Non-2xx and transport failures are returned as *errors.ErrRemote.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	u, err := url.Parse(c.baseURL + req.path)
	if err != nil {
		return err
	}
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	// Read once so the header matches a single credential generation
	if token := c.Credential(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveAPICall(req.op, 0, started)
		c.logger.Warn("Storefront API request failed", zap.String("op", req.op), zap.Error(err))
		return &errors.ErrRemote{Op: req.op, Message: err.Error()}
	}
	defer resp.Body.Close()
	metrics.ObserveAPICall(req.op, resp.StatusCode, started)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.ErrRemote{Op: req.op, Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := extractMessage(raw, resp.StatusCode)
		c.logger.Warn("Storefront API returned non-2xx",
			zap.String("op", req.op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &errors.ErrRemote{Op: req.op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &errors.ErrRemote{Op: req.op, Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

// extractMessage picks the server-provided message out of an error body
func extractMessage(raw []byte, status int) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var body map[string]interface{}
		if err := json.Unmarshal(trimmed, &body); err == nil {
			for _, key := range []string{"message", "error"} {
				if s, ok := body[key].(string); ok && s != "" {
					return s
				}
			}
		}
	} else if len(trimmed) > 0 {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil && s != "" {
			return s
		}
		text := string(trimmed)
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Unknown API error"
}

// decodeList accepts either a bare JSON array or an object wrapping it under key
func decodeList(raw json.RawMessage, key string, out interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '[' {
		return json.Unmarshal(raw, out)
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(inner, out)
}
