package linking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/rs/zerolog/log"
)

var ErrLabelsUnavailable = errors.New("failed to fetch labels from gmail")

// Labels lists the labels of the user's Gmail account using fresh tokens.
func (s *Service) Labels(ctx context.Context, userID string) ([]mail.Label, error) {
	account, err := s.FreshAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	labels, err := s.provider.ListLabels(ctx, account.Tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLabelsUnavailable, err)
	}
	for i := range labels {
		labels[i].AccountID = account.ID
	}
	return labels, nil
}

// Accounts lists the user's linked accounts without token material, served from the
// cache when possible.
func (s *Service) Accounts(ctx context.Context, userID string) ([]mail.AccountSummary, error) {
	summaries, ok, err := s.accounts.Get(ctx, userID)
	if err != nil {
		log.Err(err).Str("userId", userID).Msg("account cache read failed")
	}
	if ok {
		return summaries, nil
	}

	accounts, err := s.repos.Accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("[linking Accounts] %w", err)
	}

	summaries = make([]mail.AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, account.Summary())
	}

	if err := s.accounts.Set(ctx, userID, summaries); err != nil {
		log.Err(err).Str("userId", userID).Msg("account cache write failed")
	}
	return summaries, nil
}
