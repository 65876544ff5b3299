// Package mail holds the linked-mailbox domain: accounts, their OAuth tokens, derived
// address records and provider labels.
package mail

import (
	"fmt"
	"time"
)

type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
	ProviderIMAP    Provider = "imap"
	ProviderYahoo   Provider = "yahoo"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderGmail, ProviderOutlook, ProviderIMAP, ProviderYahoo:
		return true
	}
	return false
}

func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, s)
	}
	return p, nil
}

// TokenSet is the OAuth credential pair owned by a MailAccount.
// Optional fields are nil when the provider did not supply them.
type TokenSet struct {
	AccessToken           string
	RefreshToken          *string
	AccessTokenExpiresAt  *time.Time
	RefreshTokenExpiresAt *time.Time
}

// HasAccessToken reports whether the set can authorise an API call at all.
func (t TokenSet) HasAccessToken() bool {
	return t.AccessToken != ""
}

// HasRefreshToken reports whether a refresh token is present.
func (t TokenSet) HasRefreshToken() bool {
	return t.RefreshToken != nil && *t.RefreshToken != ""
}

// NeedsRefresh reports whether the access token expires within skew of now.
// A set without a known expiry never needs a refresh.
func (t TokenSet) NeedsRefresh(now time.Time, skew time.Duration) bool {
	if t.AccessTokenExpiresAt == nil {
		return false
	}
	return !now.Before(t.AccessTokenExpiresAt.Add(-skew))
}

// Rotate applies a refreshed set on top of t. A refresh token that the provider did not
// rotate is carried over, as is its expiry.
func (t TokenSet) Rotate(refreshed TokenSet) TokenSet {
	next := TokenSet{
		AccessToken:           refreshed.AccessToken,
		RefreshToken:          t.RefreshToken,
		AccessTokenExpiresAt:  refreshed.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: t.RefreshTokenExpiresAt,
	}
	if refreshed.HasRefreshToken() {
		next.RefreshToken = refreshed.RefreshToken
		next.RefreshTokenExpiresAt = refreshed.RefreshTokenExpiresAt
	}
	return next
}

// MailAccount is one linked mailbox. (Provider, ProviderAccountID) is unique system-wide.
type MailAccount struct {
	ID                string
	UserID            string
	Provider          Provider
	ProviderAccountID string // for Gmail the mailbox address itself
	Address           string
	Tokens            TokenSet
	LastSyncedAt      time.Time
}

// NewMailAccount is the insert shape for a MailAccount.
type NewMailAccount struct {
	UserID            string
	Provider          Provider
	ProviderAccountID string
	Address           string
	Tokens            TokenSet
}

// Summary strips token material for API responses.
func (a *MailAccount) Summary() AccountSummary {
	return AccountSummary{
		ID:           a.ID,
		Provider:     a.Provider,
		Address:      a.Address,
		LastSyncedAt: a.LastSyncedAt,
	}
}

// AccountSummary is the public view of a linked account.
type AccountSummary struct {
	ID           string    `json:"id"`
	Provider     Provider  `json:"provider"`
	Address      string    `json:"address"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

// EmailAddress is the canonical address record derived 1:1 from a MailAccount.
type EmailAddress struct {
	ID        string
	Name      string
	Address   string
	AccountID string
}

type NewEmailAddress struct {
	Address   string
	AccountID string
}

// Label is a provider folder/label persisted for an account.
type Label struct {
	ID              string   `json:"id"`
	AccountID       string   `json:"accountId"`
	Provider        Provider `json:"provider"`
	ProviderLabelID string   `json:"providerLabelId"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	MessagesTotal   int64    `json:"messagesTotal"`
	MessagesUnread  int64    `json:"messagesUnread"`
}

// Profile is the identity returned by a provider's profile endpoint.
type Profile struct {
	EmailAddress  string
	MessagesTotal int64
	ThreadsTotal  int64
	HistoryID     uint64
}
