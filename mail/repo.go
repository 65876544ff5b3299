package mail

import (
	"context"
	"time"
)

// AccountRepo persists MailAccounts. Implementations must enforce uniqueness of
// (Provider, ProviderAccountID) and of Address in storage and report a violation
// as ErrDuplicateAccount.
type AccountRepo interface {
	Create(ctx context.Context, account NewMailAccount) (*MailAccount, error)
	GetByID(ctx context.Context, accountID string) (*MailAccount, error)
	// GetTokenAccount returns the user's most recently linked account for provider.
	GetTokenAccount(ctx context.Context, userID string, provider Provider) (*MailAccount, error)
	ListByUserID(ctx context.Context, userID string) ([]*MailAccount, error)
	UpdateTokens(ctx context.Context, accountID string, tokens TokenSet) error
	TouchSynced(ctx context.Context, accountID string, at time.Time) error
}

// AddressRepo persists EmailAddress records, one per account.
type AddressRepo interface {
	Create(ctx context.Context, address NewEmailAddress) (*EmailAddress, error)
	GetByAccountID(ctx context.Context, accountID string) (*EmailAddress, error)
}

// LabelRepo persists provider labels.
type LabelRepo interface {
	SaveAll(ctx context.Context, labels []Label) error
	ListByAccountID(ctx context.Context, accountID string) ([]Label, error)
}

type Repos struct {
	Accounts  AccountRepo
	Addresses AddressRepo
	Labels    LabelRepo
}
