package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-mail-server/gmail"
	"github.com/jrsteele09/go-mail-server/internal/config"
	"github.com/jrsteele09/go-mail-server/internal/seal"
	"github.com/jrsteele09/go-mail-server/linking"
	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/jrsteele09/go-mail-server/mail/cache"
	"github.com/jrsteele09/go-mail-server/mail/repofake"
	"github.com/jrsteele09/go-mail-server/mail/repopg"
	"github.com/jrsteele09/go-mail-server/sessions"
	"github.com/rs/zerolog/log"
)

type dependencies struct {
	linking  *linking.Service
	sessions sessions.Resolver
	closers  []func()
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDependencies selects postgres or in-memory storage and redis or no-op caching
// from the configuration.
func buildDependencies(ctx context.Context, c config.Config) (*dependencies, error) {
	deps := &dependencies{}

	sealer, err := seal.New(c.GetTokenEncryptionKey())
	if err != nil {
		return nil, fmt.Errorf("[buildDependencies] token encryption key: %w", err)
	}
	if _, unsealed := sealer.(seal.Noop); unsealed {
		log.Warn().Msg("TOKEN_ENCRYPTION_KEY not set, provider tokens are stored unencrypted")
	}

	var repos mail.Repos
	if c.GetDatabaseURL() == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory repositories")
		repos = repofake.NewFakeRepos().Repos()
	} else {
		pool, err := repopg.Open(ctx, c.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("[buildDependencies] %w", err)
		}
		deps.closers = append(deps.closers, pool.Close)
		repos = repopg.NewRepos(pool, sealer)
	}

	var accountCache cache.AccountCache = cache.Noop{}
	if c.GetRedisURL() != "" {
		client, err := cache.Connect(ctx, c.GetRedisURL())
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("[buildDependencies] %w", err)
		}
		deps.closers = append(deps.closers, func() { _ = client.Close() })
		accountCache = cache.NewRedisAccountCache(client, c.GetAccountCacheTTL())
	}

	if c.GetGoogleClientID() == "" || c.GetGoogleClientSecret() == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set, gmail linking will fail")
	}
	provider := gmail.NewClient(gmail.NewConfig(c, c))

	deps.linking = linking.NewService(provider, repos, accountCache, linking.Options{
		StateBytes:  c.GetStateLength(),
		RefreshSkew: c.GetTokenRefreshSkew(),
		SyncLabels:  c.GetSyncLabelsOnLink(),
	})

	if c.GetSessionSecret() == "" {
		log.Warn().Msg("SESSION_SECRET not set, every request will be treated as signed out")
	}
	deps.sessions = sessions.NewJWTResolver(c.GetSessionSecret(), c.GetSessionCookieName(), c.GetSessionIssuer())

	return deps, nil
}
