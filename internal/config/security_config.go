package config

import "strings"

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetSessionIssuer() string
	GetTokenEncryptionKey() string
	GetEnableRateLimiting() bool
	GetRateLimitPerMinute() int
	GetTrustedProxies() []string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret is the HMAC key shared with the auth frontend that signs session tokens.
func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Security) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "session_token")
}

// GetSessionIssuer is the expected iss claim of session tokens. Empty skips the check.
func (Security) GetSessionIssuer() string {
	return GetEnv("SESSION_ISSUER", "")
}

// GetTokenEncryptionKey is a base64 encoded 32 byte key. Empty stores provider tokens unsealed.
func (Security) GetTokenEncryptionKey() string {
	return GetEnv("TOKEN_ENCRYPTION_KEY", "")
}

func (s Security) GetEnableRateLimiting() bool {
	return s.GetRateLimitPerMinute() > 0
}

func (Security) GetRateLimitPerMinute() int {
	return getInt("RATE_LIMIT_RPM", 60)
}

// GetTrustedProxies parses TRUSTED_PROXIES, a comma separated list of IPs or CIDRs whose
// X-Forwarded-For header is believed. Empty trusts no proxy.
func (Security) GetTrustedProxies() []string {
	var proxies []string
	for _, proxy := range strings.Split(GetEnv("TRUSTED_PROXIES", ""), ",") {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}
		proxies = append(proxies, proxy)
	}
	return proxies
}
