// Package gmail talks to Google's OAuth endpoints and the Gmail API on behalf of a
// linked mailbox.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-mail-server/internal/utils"
	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const me = "me"

var (
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	ErrAuthRejected   = errors.New("gmail rejected the access token")
	ErrAPIUnavailable = errors.New("gmail api unavailable")
)

// NowTimeFunc is overridden in tests.
var NowTimeFunc = time.Now

// Client implements the authorization URL builder, token exchange client, profile fetcher
// and label lister for Gmail.
type Client struct {
	oauth       *oauth2.Config
	apiEndpoint string
	timeout     time.Duration
	httpClient  *http.Client
	cb          *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}

	apiEndpoint := cfg.APIEndpoint
	if apiEndpoint != "" && !strings.HasSuffix(apiEndpoint, "/") {
		apiEndpoint += "/"
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gmailapi.GmailReadonlyScope},
			Endpoint:     endpoint,
		},
		apiEndpoint: apiEndpoint,
		timeout:     cfg.Timeout,
		httpClient:  cfg.HTTPClient,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "gmail-api",
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.ConsecutiveFailures > 5 ||
					(counts.Requests >= 10 && failureRatio >= 0.6)
			},
			// Credential problems are the caller's, not an outage.
			IsSuccessful: func(err error) bool {
				return err == nil || isClientError(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

// AuthURL returns the consent screen URL: offline access, forced consent, readonly scope.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token set. Provider rejections are wrapped
// in ErrExchangeFailed. A response without an access token yields an empty set and no error.
func (c *Client) Exchange(ctx context.Context, code string) (mail.TokenSet, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		if isMissingAccessToken(err) {
			log.Warn().Msg("token response did not contain an access token")
			return mail.TokenSet{}, nil
		}
		return mail.TokenSet{}, fmt.Errorf("[gmail Exchange] %w: %w", ErrExchangeFailed, err)
	}
	return tokenSetFromOAuth(tok), nil
}

// missingAccessTokenText is the tail of x/oauth2's "oauth2: server response missing access_token"
// (internal/token.go), raised for a 2xx token response without an access token. x/oauth2 exports
// no sentinel for it. The Exchange tests pin this text.
const missingAccessTokenText = "server response missing access_token"

// isMissingAccessToken matches the x/oauth2 error above. Provider rejections arrive as
// *oauth2.RetrieveError and never match, whatever their body says.
func isMissingAccessToken(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return false
	}
	return strings.Contains(err.Error(), missingAccessTokenText)
}

// Refresh mints a new access token. It returns nil when the refresh fails, which callers
// must treat as "relink required". The refresh token is only set when it was rotated.
func (c *Client) Refresh(ctx context.Context, refreshToken string) *mail.TokenSet {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	tok, err := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		log.Err(err).Msg("failed to refresh gmail access token")
		return nil
	}
	if tok.AccessToken == "" {
		log.Warn().Msg("refresh response did not contain an access token")
		return nil
	}

	refreshed := tokenSetFromOAuth(tok)
	if tok.RefreshToken == refreshToken {
		refreshed.RefreshToken = nil
		refreshed.RefreshTokenExpiresAt = nil
	}
	return &refreshed
}

// FetchProfile reads the mailbox profile. It returns nil on any failure. A profile with an
// empty address is returned as-is; deciding that it is unusable is the caller's job.
func (c *Client) FetchProfile(ctx context.Context, tokens mail.TokenSet) *mail.Profile {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	result, err := c.cb.Execute(func() (interface{}, error) {
		svc, err := c.service(ctx, tokens)
		if err != nil {
			return nil, err
		}
		return svc.Users.GetProfile(me).Context(ctx).Do()
	})
	if err != nil {
		log.Err(classify(err)).Msg("failed to fetch gmail profile")
		return nil
	}

	resp := result.(*gmailapi.Profile)
	return &mail.Profile{
		EmailAddress:  resp.EmailAddress,
		MessagesTotal: resp.MessagesTotal,
		ThreadsTotal:  resp.ThreadsTotal,
		HistoryID:     resp.HistoryId,
	}
}

// ListLabels returns the mailbox's labels. AccountID is left for the caller to fill.
func (c *Client) ListLabels(ctx context.Context, tokens mail.TokenSet) ([]mail.Label, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	result, err := c.cb.Execute(func() (interface{}, error) {
		svc, err := c.service(ctx, tokens)
		if err != nil {
			return nil, err
		}
		return svc.Users.Labels.List(me).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("[gmail ListLabels] %w", classify(err))
	}

	resp := result.(*gmailapi.ListLabelsResponse)
	labels := make([]mail.Label, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, mail.Label{
			Provider:        mail.ProviderGmail,
			ProviderLabelID: l.Id,
			Name:            l.Name,
			Type:            l.Type,
			MessagesTotal:   l.MessagesTotal,
			MessagesUnread:  l.MessagesUnread,
		})
	}
	return labels, nil
}

func (c *Client) service(ctx context.Context, tokens mail.TokenSet) (*gmailapi.Service, error) {
	tok := &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: utils.Value(tokens.RefreshToken),
		TokenType:    "Bearer",
		Expiry:       utils.Value(tokens.AccessTokenExpiresAt),
	}

	opts := []option.ClientOption{option.WithHTTPClient(c.oauth.Client(ctx, tok))}
	if c.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.apiEndpoint))
	}
	return gmailapi.NewService(ctx, opts...)
}

// callContext applies the provider timeout and the configured HTTP client.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func tokenSetFromOAuth(tok *oauth2.Token) mail.TokenSet {
	set := mail.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: utils.StringOrNil(tok.RefreshToken),
	}
	if !tok.Expiry.IsZero() {
		set.AccessTokenExpiresAt = utils.Ptr(tok.Expiry.UTC())
	}
	if secs, ok := utils.Int64Value(tok.Extra("refresh_token_expires_in")); ok && secs > 0 && set.RefreshToken != nil {
		set.RefreshTokenExpiresAt = utils.Ptr(NowTimeFunc().UTC().Add(time.Duration(secs) * time.Second))
	}
	return set
}

func isClientError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}

func classify(err error) error {
	var apiErr *googleapi.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrAuthRejected, err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrAPIUnavailable, err)
	}
	return err
}
