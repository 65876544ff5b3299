package config

import "time"

type OAuthConfig interface {
	GetStateCookieName() string
	GetStateLength() int
	GetStateTTL() time.Duration
	GetProviderTimeout() time.Duration
	GetTokenRefreshSkew() time.Duration
	GetSyncLabelsOnLink() bool
	GetAccountCacheTTL() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetStateCookieName() string {
	return "gmail_oauth_state"
}

func (OAuth) GetStateLength() int {
	return 16 // 16 bytes = 32 hex characters
}

func (OAuth) GetStateTTL() time.Duration {
	return 5 * time.Minute
}

func (OAuth) GetProviderTimeout() time.Duration {
	return getDuration("PROVIDER_TIMEOUT", 10*time.Second)
}

// GetTokenRefreshSkew is how long before the stored expiry an access token is refreshed.
func (OAuth) GetTokenRefreshSkew() time.Duration {
	return getDuration("TOKEN_REFRESH_SKEW", time.Minute)
}

func (OAuth) GetSyncLabelsOnLink() bool {
	return getBool("GMAIL_SYNC_LABELS", true)
}

func (OAuth) GetAccountCacheTTL() time.Duration {
	return getDuration("ACCOUNT_CACHE_TTL", 5*time.Minute)
}
