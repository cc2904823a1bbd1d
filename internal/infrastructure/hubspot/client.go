// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package hubspot is a minimal client for the HubSpot CRM v3 contacts API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/middleware"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/constants"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	// BaseURL is the base URL for the HubSpot API
	BaseURL = "https://api.hubapi.com"
	// DefaultClientTimeout is the default HTTP client timeout for HubSpot requests
	DefaultClientTimeout = 30 * time.Second
)

// Config holds the configuration for the HubSpot client
type Config struct {
	// AccessToken is a private app token sent as a bearer token
	AccessToken string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: base transport, wrapped with request logging and tracing
	Transport http.RoundTripper
}

// Client represents a HubSpot CRM client
type Client struct {
	config     Config
	httpClient *http.Client
}

// Ensure that Client implements the contact store used by the CRM sync
var _ domain.ContactStore = (*Client)(nil)

// NewClient creates a new HubSpot client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}

	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &oauth2.Transport{
				Base: otelhttp.NewTransport(middleware.RequestLogger(base)),
				Source: oauth2.StaticTokenSource(&oauth2.Token{
					AccessToken: config.AccessToken,
					TokenType:   "Bearer",
				}),
			},
		},
	}
}

// ResponseError is a non-success response from the HubSpot API.
type ResponseError struct {
	StatusCode    int
	Category      string
	Message       string
	CorrelationID string
	Body          string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("hubspot API error (status %d, %s): %s", e.StatusCode, e.Category, e.Message)
	}
	return fmt.Sprintf("hubspot API error (status %d): %s", e.StatusCode, e.Body)
}

func parseErrorResponse(status int, body []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: status, Body: string(body)}
	var errResp struct {
		Category      string `json:"category"`
		Message       string `json:"message"`
		CorrelationID string `json:"correlationId"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		respErr.Category = errResp.Category
		respErr.Message = errResp.Message
		respErr.CorrelationID = errResp.CorrelationID
	}
	return respErr
}

// do sends payload as JSON and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(constants.AcceptHeader, constants.ContentTypeJSON)
	if payload != nil {
		req.Header.Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "HubSpot API request failed",
			"method", method,
			"path", path,
			logging.ErrKey, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respErr := parseErrorResponse(resp.StatusCode, respBody)
		if respErr.CorrelationID == "" {
			respErr.CorrelationID = resp.Header.Get(constants.HubSpotCorrelationIDHeader)
		}
		slog.ErrorContext(ctx, "HubSpot API error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"correlation_id", respErr.CorrelationID,
			"body", string(respBody),
			logging.ErrKey, respErr)
		return respErr
	}

	slog.DebugContext(ctx, "HubSpot API request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(startTime).String())

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
