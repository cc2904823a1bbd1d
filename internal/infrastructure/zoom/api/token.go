// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrAuthentication is wrapped by every failure of the credential exchange.
var ErrAuthentication = errors.New("zoom authentication failed")

// TokenProvider exchanges Server-to-Server OAuth credentials for a bearer
// token. The first token obtained is kept for the lifetime of the provider and
// is never refreshed; a long running process has to build a new provider.
type TokenProvider struct {
	oauthConfig *clientcredentials.Config
	httpClient  *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenProvider creates a provider for the account in config.
func NewTokenProvider(config Config) *TokenProvider {
	if config.AuthURL == "" {
		config.AuthURL = AuthURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	return newTokenProvider(config, &http.Client{Timeout: config.Timeout})
}

func newTokenProvider(config Config, httpClient *http.Client) *TokenProvider {
	// Zoom Server-to-Server OAuth requires the account_credentials grant and
	// the client id and secret in a Basic auth header.
	oauthConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.AuthURL,
		EndpointParams: url.Values{
			"grant_type": []string{"account_credentials"},
			"account_id": []string{config.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	return &TokenProvider{
		oauthConfig: oauthConfig,
		httpClient:  httpClient,
	}
}

// Token returns the cached token, performing the exchange on first use.
func (p *TokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != nil {
		return p.token, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.oauthConfig.Token(ctx)
	if err != nil {
		attrs := []any{logging.ErrKey, err, logging.PriorityCritical()}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			attrs = append(attrs,
				"status", retrieveErr.Response.StatusCode,
				"body", string(retrieveErr.Body))
		}
		slog.ErrorContext(ctx, "Zoom token exchange failed", attrs...)
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	slog.DebugContext(ctx, "obtained Zoom access token",
		"token_type", token.TokenType,
		"expiry", token.Expiry)

	p.token = token
	return token, nil
}

// contextTokenSource adapts the provider to oauth2.TokenSource for one request.
type contextTokenSource struct {
	ctx      context.Context
	provider *TokenProvider
}

func (s contextTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.Token(s.ctx)
}

func isAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}
