package linking

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/rs/zerolog/log"
)

// CallbackInput is what the provider redirect delivers plus the state read from the cookie.
type CallbackInput struct {
	Code        string
	State       string
	StoredState string
	// ActiveUser resolves the signed-in user. It is only called once the mailbox
	// identity is known.
	ActiveUser func() (string, bool)
}

type CallbackResult struct {
	Outcome Outcome
	// Err carries the underlying cause for failed outcomes. It is for logs only.
	Err error

	Account *mail.MailAccount
	Address *mail.EmailAddress
	// AddressErr is set when the address record could not be stored. The link still succeeds.
	AddressErr   error
	LabelsSynced int
}

func abort(outcome Outcome, err error) CallbackResult {
	return CallbackResult{Outcome: outcome, Err: err}
}

// HandleCallback completes an authorization. The caller must delete the state cookie
// whatever the outcome.
func (s *Service) HandleCallback(ctx context.Context, in CallbackInput) CallbackResult {
	result := s.handleCallback(ctx, in)

	event := log.Info()
	if !result.Outcome.Succeeded() {
		event = log.Warn().AnErr("cause", result.Err)
	}
	if result.Account != nil {
		event = event.Str("accountId", result.Account.ID).Str("userId", result.Account.UserID)
	}
	event.Str("outcome", result.Outcome.String()).Msg("gmail link callback finished")

	return result
}

func (s *Service) handleCallback(ctx context.Context, in CallbackInput) CallbackResult {
	if !statesMatch(in.State, in.StoredState) {
		return abort(OutcomeStateMismatch, nil)
	}

	if in.Code == "" {
		return abort(OutcomeMissingCode, nil)
	}

	tokens, err := s.provider.Exchange(ctx, in.Code)
	if err != nil {
		return abort(OutcomeExchangeFailed, err)
	}
	if !tokens.HasAccessToken() {
		return abort(OutcomeNoAccessToken, nil)
	}

	profile := s.provider.FetchProfile(ctx, tokens)
	if profile == nil || profile.EmailAddress == "" {
		return abort(OutcomeProfileUnavailable, nil)
	}

	userID, ok := "", false
	if in.ActiveUser != nil {
		userID, ok = in.ActiveUser()
	}
	if !ok || userID == "" {
		return abort(OutcomeUnauthenticated, nil)
	}

	account, err := s.repos.Accounts.Create(ctx, mail.NewMailAccount{
		UserID:            userID,
		Provider:          mail.ProviderGmail,
		ProviderAccountID: profile.EmailAddress,
		Address:           profile.EmailAddress,
		Tokens:            tokens,
	})
	if errors.Is(err, mail.ErrDuplicateAccount) {
		return abort(OutcomeDuplicateAccount, err)
	}
	if err != nil {
		return abort(OutcomeAccountPersistFailed, err)
	}

	result := CallbackResult{Outcome: OutcomeLinked, Account: account}

	result.Address, result.AddressErr = s.repos.Addresses.Create(ctx, mail.NewEmailAddress{
		Address:   account.Address,
		AccountID: account.ID,
	})
	if result.AddressErr != nil {
		log.Err(result.AddressErr).Str("accountId", account.ID).Msg("failed to store email address for linked account")
	}

	if s.opts.SyncLabels {
		result.LabelsSynced = s.syncLabels(ctx, account, tokens)
	}

	if err := s.accounts.Invalidate(ctx, userID); err != nil {
		log.Err(err).Str("userId", userID).Msg("failed to invalidate account cache")
	}

	return result
}

// syncLabels is best effort and returns how many labels were stored.
func (s *Service) syncLabels(ctx context.Context, account *mail.MailAccount, tokens mail.TokenSet) int {
	labels, err := s.provider.ListLabels(ctx, tokens)
	if err != nil {
		log.Err(err).Str("accountId", account.ID).Msg("failed to fetch gmail labels")
		return 0
	}

	for i := range labels {
		labels[i].AccountID = account.ID
		labels[i].Provider = account.Provider
	}
	if err := s.repos.Labels.SaveAll(ctx, labels); err != nil {
		log.Err(err).Str("accountId", account.ID).Msg("failed to store gmail labels")
		return 0
	}

	if err := s.repos.Accounts.TouchSynced(ctx, account.ID, NowTimeFunc().UTC()); err != nil {
		log.Err(err).Str("accountId", account.ID).Msg("failed to update last synced time")
	}
	return len(labels)
}

// statesMatch requires both values present and byte-for-byte equal.
func statesMatch(state, stored string) bool {
	if state == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(state), []byte(stored)) == 1
}
