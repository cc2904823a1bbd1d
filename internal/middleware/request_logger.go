// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/constants"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(r).
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// RequestLogger wraps next so every outbound API call is logged at debug
// level. The query string is logged but headers are not, so credentials stay
// out of the logs. A nil next uses http.DefaultTransport.
func RequestLogger(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now().UTC()

		// Add request URL attributes to the context so that they are included in the response log
		ctx := r.Context()
		ctx = logging.AppendCtx(ctx, slog.String("method", r.Method))
		ctx = logging.AppendCtx(ctx, slog.String("host", r.URL.Host))
		ctx = logging.AppendCtx(ctx, slog.String("path", r.URL.EscapedPath()))
		if r.URL.RawQuery != "" {
			ctx = logging.AppendCtx(ctx, slog.String("query", r.URL.RawQuery))
		}

		slog.DebugContext(ctx, "HTTP request")

		resp, err := next.RoundTrip(r)
		duration := time.Since(start)
		if err != nil {
			slog.DebugContext(ctx, "HTTP request failed", "duration", duration.String(), logging.ErrKey, err)
			return resp, err
		}

		attrs := []any{"status", resp.StatusCode, "duration", duration.String()}
		for _, header := range constants.TraceHeaders {
			if value := resp.Header.Get(header); value != "" {
				attrs = append(attrs, "trace_header", value)
			}
		}
		slog.DebugContext(ctx, "HTTP response", attrs...)
		return resp, nil
	})
}
