// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/middleware"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/constants"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// ClientAPI defines the Zoom API operations used by the attendance sync.
// This allows for easy mocking and testing of the Zoom client
type ClientAPI interface {
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error)
	ListPastInstances(ctx context.Context, meetingID string) ([]models.MeetingInstance, error)
	ListParticipants(ctx context.Context, meetingUUID string) ([]models.Participant, error)
}

const (
	// BaseURL is the base URL for Zoom API
	BaseURL = "https://api.zoom.us/v2"
	// AuthURL is the OAuth token endpoint
	AuthURL = "https://zoom.us/oauth/token"
	// DefaultClientTimeout is the default HTTP client timeout for Zoom API requests
	DefaultClientTimeout = 30 * time.Second
	// DefaultPageSize is the largest page the listing endpoints accept
	DefaultPageSize = 300
	// Backoff applies only when MaxRetries is above zero
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Client represents a Zoom API client
type Client struct {
	config    Config
	tokens    *TokenProvider
	transport http.RoundTripper
}

// Config holds the configuration for the Zoom client
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override auth URL for testing
	AuthURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: upper bound of records per page, 1..300
	PageSize int
	// Optional: retries on 5xx, 429 and network errors. Zero disables retries.
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// Optional: base transport, wrapped with request logging and tracing
	Transport http.RoundTripper
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Zoom API client
func NewClient(config Config) *Client {
	// Set defaults if not provided
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = AuthURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.PageSize <= 0 || config.PageSize > DefaultPageSize {
		config.PageSize = DefaultPageSize
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	transport := otelhttp.NewTransport(middleware.RequestLogger(base))

	return &Client{
		config:    config,
		tokens:    newTokenProvider(config, &http.Client{Timeout: config.Timeout, Transport: transport}),
		transport: transport,
	}
}

// Tokens returns the provider holding the client's cached bearer token.
func (c *Client) Tokens() *TokenProvider {
	return c.tokens
}

// PageSize returns the page size sent on listing requests.
func (c *Client) PageSize() int {
	return c.config.PageSize
}

// getAuthenticatedClient returns an HTTP client that attaches the cached bearer token
func (c *Client) getAuthenticatedClient(ctx context.Context) *http.Client {
	return &http.Client{
		Timeout: c.config.Timeout,
		Transport: &oauth2.Transport{
			Base:   c.transport,
			Source: contextTokenSource{ctx: ctx, provider: c.tokens},
		},
	}
}

// shouldRetry determines if an error or HTTP status code should be retried
func shouldRetry(ctx context.Context, statusCode int, err error) bool {
	// Don't retry if context was cancelled
	if ctx.Err() != nil {
		return false
	}

	// Credentials that were rejected once will be rejected again
	if err != nil && isAuthenticationError(err) {
		return false
	}

	// Retry on network/connection errors
	if err != nil {
		return true
	}

	// Retry on server errors (5xx)
	if statusCode >= 500 && statusCode < 600 {
		return true
	}

	// Retry on rate limiting (429)
	return statusCode == http.StatusTooManyRequests
}

// calculateBackoff calculates the backoff duration for a retry attempt with jitter
func (c *Client) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	// Calculate exponential backoff
	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))

	// Cap at max backoff
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	// Add jitter (±25% of backoff duration) to prevent thundering herd
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)

	// Ensure we don't go below initial backoff
	if backoffWithJitter < c.config.InitialBackoff {
		backoffWithJitter = c.config.InitialBackoff
	}

	return backoffWithJitter
}

// get performs an authenticated GET and returns the body of a 2xx response.
// Any other status is logged with its body and returned as *ResponseError.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.config.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var (
		lastErr    error
		lastStatus int
		lastBody   []byte
	)

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set(constants.AcceptHeader, constants.ContentTypeJSON)

		c.logRequestAttempt(ctx, path, attempt)

		startTime := time.Now()
		status, body, err := c.execute(ctx, req)
		duration := time.Since(startTime)

		if err == nil && status >= 200 && status < 300 {
			slog.DebugContext(ctx, "Zoom API request completed",
				"method", http.MethodGet,
				"path", path,
				"status", status,
				"duration", duration.String(),
				"attempt", attempt+1,
			)
			return body, nil
		}

		lastErr, lastStatus, lastBody = err, status, body

		if attempt == c.config.MaxRetries || !shouldRetry(ctx, status, err) {
			break
		}

		backoff := c.calculateBackoff(attempt)
		slog.WarnContext(ctx, "Zoom API request failed, retrying",
			"path", path,
			"status", status,
			"duration", duration.String(),
			"attempt", attempt+1,
			"max_retries", c.config.MaxRetries,
			"backoff", backoff.String(),
			logging.ErrKey, err)

		// Wait with backoff, but check for context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr != nil {
		slog.ErrorContext(ctx, "Zoom API request failed",
			"path", path,
			logging.ErrKey, lastErr)
		return nil, fmt.Errorf("GET %s: %w", path, lastErr)
	}

	respErr := parseErrorResponse(lastStatus, lastBody)
	slog.ErrorContext(ctx, "Zoom API error response",
		"path", path,
		"status", lastStatus,
		"body", string(lastBody),
		logging.ErrKey, respErr)
	return nil, respErr
}

// execute runs one request and drains the response body.
func (c *Client) execute(ctx context.Context, req *http.Request) (int, []byte, error) {
	resp, err := c.getAuthenticatedClient(ctx).Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// logRequestAttempt logs the request attempt
func (c *Client) logRequestAttempt(ctx context.Context, path string, attempt int) {
	if attempt == 0 {
		slog.DebugContext(ctx, "making Zoom API request",
			"method", http.MethodGet,
			"path", path,
			"max_retries", c.config.MaxRetries,
		)
		return
	}
	slog.DebugContext(ctx, "retrying Zoom API request",
		"method", http.MethodGet,
		"path", path,
		"attempt", attempt,
		"max_retries", c.config.MaxRetries,
	)
}

// getJSON performs a GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// Zoom error codes that carry a specific meaning for the sync.
const (
	ErrorCodeMeetingNotFound  = 3001
	ErrorCodeInvalidMeetingID = 300
)

// ResponseError is a non-success response from the Zoom API.
type ResponseError struct {
	StatusCode int
	Code       int
	Message    string
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("zoom API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("zoom API error (status %d): %s", e.StatusCode, e.Body)
}

// NotFound reports whether the response means the meeting or instance does not exist.
func (e *ResponseError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == ErrorCodeMeetingNotFound
}

// parseErrorResponse attempts to parse a Zoom API error response
func parseErrorResponse(status int, body []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: status, Body: string(body)}
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		respErr.Code = errResp.Code
		respErr.Message = errResp.Message
	}
	return respErr
}
