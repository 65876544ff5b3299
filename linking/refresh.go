package linking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoToken          = errors.New("no access token found")
	ErrExpiredNoRefresh = errors.New("access token expired and no refresh token present")
	ErrRefreshFailed    = errors.New("unable to refresh tokens")
)

// EnsureFreshTokens returns usable Gmail tokens for the user, refreshing and storing
// them first when the access token is at or near expiry.
func (s *Service) EnsureFreshTokens(ctx context.Context, userID string) (mail.TokenSet, error) {
	account, err := s.FreshAccount(ctx, userID)
	if err != nil {
		return mail.TokenSet{}, err
	}
	return account.Tokens, nil
}

// FreshAccount is EnsureFreshTokens returning the whole account.
func (s *Service) FreshAccount(ctx context.Context, userID string) (*mail.MailAccount, error) {
	account, err := s.repos.Accounts.GetTokenAccount(ctx, userID, mail.ProviderGmail)
	if errors.Is(err, mail.ErrAccountNotFound) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("[linking FreshAccount] load account: %w", err)
	}
	if !account.Tokens.HasAccessToken() {
		return nil, ErrNoToken
	}

	if !account.Tokens.NeedsRefresh(NowTimeFunc(), s.opts.RefreshSkew) {
		return account, nil
	}

	if !account.Tokens.HasRefreshToken() {
		return nil, ErrExpiredNoRefresh
	}

	refreshed := s.provider.Refresh(ctx, *account.Tokens.RefreshToken)
	if refreshed == nil || !refreshed.HasAccessToken() {
		return nil, ErrRefreshFailed
	}

	account.Tokens = account.Tokens.Rotate(*refreshed)
	if err := s.repos.Accounts.UpdateTokens(ctx, account.ID, account.Tokens); err != nil {
		// The new token is valid for this request even if it could not be stored.
		log.Err(err).Str("accountId", account.ID).Msg("failed to store refreshed tokens")
	}
	return account, nil
}
