package config

import "strings"

// googleCallbackPath must match the callback route registered by the server.
const googleCallbackPath = "/api/auth/google/callback"

type GoogleConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURI() string
	GetGmailAPIEndpoint() string
}

type Google struct{}

var _ GoogleConfig = Google{}

func (Google) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (Google) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

// GetGoogleRedirectURI defaults to the callback route under BASE_URL.
func (Google) GetGoogleRedirectURI() string {
	return GetEnv("GOOGLE_REDIRECT_URI", strings.TrimSuffix(EnvVars{}.GetBaseURL(), "/")+googleCallbackPath)
}

// GetGmailAPIEndpoint overrides the Gmail API base URL. Empty uses Google's default.
func (Google) GetGmailAPIEndpoint() string {
	return GetEnv("GMAIL_API_ENDPOINT", "")
}
