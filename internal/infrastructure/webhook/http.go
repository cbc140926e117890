package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
)

// SignatureHeader carries the hex HMAC-SHA256 of the body when a secret is configured.
const SignatureHeader = "X-Tracker-Signature"

// HTTPEmitter sends issue events to an HTTP endpoint via POST JSON.
type HTTPEmitter struct {
	client  *http.Client
	url     string
	secret  []byte
	headers map[string]string
}

// HTTPEmitterOption configures HTTPEmitter.
type HTTPEmitterOption func(*HTTPEmitter)

// WithClient sets the HTTP client (default: 10s timeout).
func WithClient(c *http.Client) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		e.client = c
	}
}

// WithHeader sets a header sent on every request (e.g. Authorization).
func WithHeader(key, value string) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		if e.headers == nil {
			e.headers = make(map[string]string)
		}
		e.headers[key] = value
	}
}

// WithSecret signs every body with HMAC-SHA256.
func WithSecret(secret string) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		e.secret = []byte(secret)
	}
}

// NewHTTPEmitter returns an EventDeliverer that POSTs IssueEvent as JSON to url.
func NewHTTPEmitter(url string, opts ...HTTPEmitterOption) *HTTPEmitter {
	e := &HTTPEmitter{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Deliver implements ports.EventDeliverer. Any non-2xx answer is an error so the queue retries.
func (e *HTTPEmitter) Deliver(ctx context.Context, event ports.IssueEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tracker-Event", event.Type)
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}
	if len(e.secret) > 0 {
		req.Header.Set(SignatureHeader, Sign(e.secret, body))
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &emitError{status: resp.StatusCode}
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type emitError struct {
	status int
}

func (e *emitError) Error() string {
	return fmt.Sprintf("webhook endpoint returned status %d", e.status)
}

var _ ports.EventDeliverer = (*HTTPEmitter)(nil)
