// Package backend talks to the remote SaveEat REST API: a thin HTTP client
// plus one adapter per resource (auth, listings, reservations, profiles).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/pkg/metrics"
)

const genericErrorMessage = "an unexpected error occurred"

// Client performs JSON requests against the backend. It holds no per-user
// state and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	newID   func() string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient returns a Client rooted at baseURL (e.g. http://localhost:8000/api).
// Outbound calls are traced through otelhttp.
func NewClient(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:     log,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// errorBody is the backend error envelope: {message, errors: {field: [msg]}}.
type errorBody struct {
	Message json.RawMessage            `json:"message"`
	Error   json.RawMessage            `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// Request sends one call and returns the raw JSON body on success. Failures
// are reported as *domain.ValidationError, *domain.RequestError,
// *domain.TransportError or *domain.NetworkError.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body any, token string) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")
	req.Header.Set("X-Request-ID", reqID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "network").Inc()
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("backend unreachable")
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "transport").Inc()
		return nil, &domain.TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", reqID).
		Msg("backend call")

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		if ok {
			metrics.BackendRequestsTotal.WithLabelValues(method, "ok").Inc()
			return json.RawMessage("null"), nil
		}
		metrics.BackendRequestsTotal.WithLabelValues(method, "rejected").Inc()
		return nil, &domain.RequestError{Status: resp.StatusCode, Message: genericErrorMessage}
	}
	if !json.Valid(raw) {
		metrics.BackendRequestsTotal.WithLabelValues(method, "transport").Inc()
		return nil, &domain.TransportError{Err: fmt.Errorf("status %d: response is not JSON", resp.StatusCode)}
	}
	if ok {
		metrics.BackendRequestsTotal.WithLabelValues(method, "ok").Inc()
		return json.RawMessage(raw), nil
	}

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := firstString(eb.Message, eb.Error)

	if resp.StatusCode == http.StatusUnprocessableEntity {
		metrics.BackendRequestsTotal.WithLabelValues(method, "validation").Inc()
		ve := &domain.ValidationError{Message: msg}
		for field, v := range eb.Errors {
			for _, m := range stringList(v) {
				ve.Add(field, m)
			}
		}
		if ve.Message == "" && len(ve.Fields) == 0 {
			ve.Message = genericErrorMessage
		}
		return nil, ve
	}

	metrics.BackendRequestsTotal.WithLabelValues(method, "rejected").Inc()
	if msg == "" {
		msg = genericErrorMessage
	}
	return nil, &domain.RequestError{Status: resp.StatusCode, Message: msg}
}

// Ping checks that the API root answers at all; any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	resp.Body.Close()
	return nil
}

func firstString(candidates ...json.RawMessage) string {
	for _, c := range candidates {
		var s string
		if len(c) > 0 && json.Unmarshal(c, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// stringList accepts either ["a","b"] or "a".
func stringList(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{one}
	}
	return nil
}

// isConflict reports whether err is a backend rejection carrying message,
// or an HTTP 409.
func isConflict(err error, message string) bool {
	var re *domain.RequestError
	if errors.As(err, &re) {
		return re.Status == http.StatusConflict || re.Message == message
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message == message
	}
	return false
}
