// Package httpclient provides the outbound HTTP client shared by every
// carrier adapter: bounded retries with increasing backoff for transient
// failures (network errors and 5xx responses), never for 4xx.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shopcore/backend/internal/infrastructure/logger"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultTimeout     = 30 * time.Second
	// maxResponseSize limits response bodies to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// ErrRetriesExhausted wraps the last network error after the retry budget is
// spent, so callers can tell "provider unreachable" from "provider says no".
var ErrRetriesExhausted = errors.New("httpclient: retries exhausted")

// Client issues outbound HTTP calls with bounded retry. A response with any
// status below 500 is returned as-is on the first occurrence: 4xx is a
// definitive provider-side rejection, not a transient failure.
type Client struct {
	http        *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithMaxAttempts sets the total attempt budget (first try included)
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the delay before the first retry; each subsequent retry
// doubles it
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithTimeout sets the per-attempt HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for retry warnings
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a retrying HTTP client with the given options
func New(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes the request, retrying on network errors and 5xx responses.
// The request must be rewindable for retries; requests built with
// http.NewRequestWithContext and a bytes.Reader body are.
//
// After the budget is spent, the last network error is returned wrapped in
// ErrRetriesExhausted; a persistent 5xx is returned as the final response so
// callers can still read the vendor body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpclient: rewind request body: %w", err)
				}
				req.Body = body
			}
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("outbound request failed",
				append(requestFields(req),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)...,
			)
			continue
		}

		if resp.StatusCode >= 500 && attempt < c.maxAttempts {
			c.logger.Warn("outbound request got server error",
				append(requestFields(req),
					zap.Int("attempt", attempt),
					zap.Int("status", resp.StatusCode),
				)...,
			)
			drain(resp)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

// requestFields builds retry log fields for an outbound request, carrying
// the provider and order identifiers when the caller put them in the context.
func requestFields(req *http.Request) []zap.Field {
	fields := []zap.Field{zap.String("url", req.URL.String())}
	if provider := logger.GetProvider(req.Context()); provider != "" {
		fields = append(fields, zap.String("provider", provider))
	}
	if orderID := logger.GetOrderID(req.Context()); orderID != "" {
		fields = append(fields, zap.String("order_id", orderID))
	}
	return fields
}

// ReadBody reads and closes a response body with the shared size limit.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("httpclient: read response: %w", err)
	}
	return body, nil
}

// IsUnreachable reports whether err means the provider could not be reached
// at all (as opposed to a vendor rejection carried in a response).
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrRetriesExhausted) || errors.Is(err, context.DeadlineExceeded)
}

// drain discards a response body so the connection can be reused before a retry.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
}
