// Package linking runs the Gmail account linking flow: issuing CSRF state, completing the
// OAuth callback and keeping stored tokens fresh.
package linking

import (
	"context"
	"time"

	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/jrsteele09/go-mail-server/mail/cache"
)

// NowTimeFunc is overridden in tests.
var NowTimeFunc = time.Now

type Authorizer interface {
	AuthURL(state string) string
}

type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (mail.TokenSet, error)
	// Refresh returns nil when the refresh token can no longer be used.
	Refresh(ctx context.Context, refreshToken string) *mail.TokenSet
}

type ProfileFetcher interface {
	// FetchProfile returns nil on failure.
	FetchProfile(ctx context.Context, tokens mail.TokenSet) *mail.Profile
}

type LabelLister interface {
	ListLabels(ctx context.Context, tokens mail.TokenSet) ([]mail.Label, error)
}

// Provider is everything the flow needs from the mail provider.
type Provider interface {
	Authorizer
	TokenExchanger
	ProfileFetcher
	LabelLister
}

type Options struct {
	// StateBytes is the amount of randomness in a state token.
	StateBytes int
	// RefreshSkew refreshes access tokens this long before they expire.
	RefreshSkew time.Duration
	// SyncLabels fetches and stores labels right after linking.
	SyncLabels bool
}

const defaultStateBytes = 16

type Service struct {
	provider Provider
	repos    mail.Repos
	accounts cache.AccountCache
	opts     Options
}

func NewService(provider Provider, repos mail.Repos, accounts cache.AccountCache, opts Options) *Service {
	if opts.StateBytes < defaultStateBytes {
		opts.StateBytes = defaultStateBytes
	}
	if accounts == nil {
		accounts = cache.Noop{}
	}
	return &Service{
		provider: provider,
		repos:    repos,
		accounts: accounts,
		opts:     opts,
	}
}
