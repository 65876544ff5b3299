package gmail

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-mail-server/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Config is the static client configuration for Google OAuth and the Gmail API.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint defaults to google.Endpoint.
	Endpoint oauth2.Endpoint
	// APIEndpoint overrides the Gmail API base URL when set.
	APIEndpoint string
	// Timeout bounds every provider call. Zero means no extra bound.
	Timeout time.Duration
	// HTTPClient is used for token and API calls when set.
	HTTPClient *http.Client
}

// NewConfig builds a Config from the environment-backed settings.
func NewConfig(googleCfg config.GoogleConfig, oauthCfg config.OAuthConfig) Config {
	return Config{
		ClientID:     googleCfg.GetGoogleClientID(),
		ClientSecret: googleCfg.GetGoogleClientSecret(),
		RedirectURL:  googleCfg.GetGoogleRedirectURI(),
		Endpoint:     google.Endpoint,
		APIEndpoint:  googleCfg.GetGmailAPIEndpoint(),
		Timeout:      oauthCfg.GetProviderTimeout(),
	}
}
