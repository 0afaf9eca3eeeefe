package services

import (
	"context"
	"fmt"
	"net/http"

	"workflowx/src/model"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	scopeCalendarEvents = "https://www.googleapis.com/auth/calendar.events"
	scopeGmailSend      = "https://www.googleapis.com/auth/gmail.send"
	scopeGmailReadonly  = "https://www.googleapis.com/auth/gmail.readonly"
)

// GoogleHTTPClient returns an HTTP client that authorises requests for the
// configured Google account. A refresh token is preferred; a bare access
// token is used as-is until it expires.
func GoogleHTTPClient(ctx context.Context, cfg model.GoogleConfig) (*http.Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("google: %w", ErrNotConfigured)
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "" {
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{scopeCalendarEvents, scopeGmailSend, scopeGmailReadonly},
		}
		tok := &oauth2.Token{RefreshToken: cfg.RefreshToken, AccessToken: cfg.AccessToken}
		return oc.Client(ctx, tok), nil
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, ts), nil
}
