package repofake

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-mail-server/mail"
)

var _ mail.AccountRepo = (*FakeAccountRepo)(nil)

// FakeAccountRepo is a thread-safe in-memory AccountRepo. The duplicate check and the
// insert happen under one lock, which gives the same guarantee as a unique index.
type FakeAccountRepo struct {
	accounts map[string]*mail.MailAccount
	order    []string // insertion order of account IDs
	lock     sync.RWMutex

	// CreateErr, when set, is returned by Create instead of inserting.
	CreateErr error
	// UpdateErr, when set, is returned by UpdateTokens.
	UpdateErr error

	creates int
	updates int
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*mail.MailAccount),
	}
}

func (r *FakeAccountRepo) Create(_ context.Context, account mail.NewMailAccount) (*mail.MailAccount, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	if _, err := mail.ParseProvider(string(account.Provider)); err != nil {
		return nil, err
	}

	for _, existing := range r.accounts {
		if existing.Provider == account.Provider && existing.ProviderAccountID == account.ProviderAccountID {
			return nil, mail.ErrDuplicateAccount
		}
		if strings.EqualFold(existing.Address, account.Address) {
			return nil, mail.ErrDuplicateAccount
		}
	}

	created := &mail.MailAccount{
		ID:                uuid.NewString(),
		UserID:            account.UserID,
		Provider:          account.Provider,
		ProviderAccountID: account.ProviderAccountID,
		Address:           account.Address,
		Tokens:            account.Tokens,
		LastSyncedAt:      time.Now().UTC(),
	}
	r.accounts[created.ID] = created
	r.order = append(r.order, created.ID)
	r.creates++

	return copyAccount(created), nil
}

func (r *FakeAccountRepo) GetByID(_ context.Context, accountID string) (*mail.MailAccount, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return nil, mail.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

func (r *FakeAccountRepo) GetTokenAccount(_ context.Context, userID string, provider mail.Provider) (*mail.MailAccount, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		account := r.accounts[r.order[i]]
		if account.UserID == userID && account.Provider == provider {
			return copyAccount(account), nil
		}
	}
	return nil, mail.ErrAccountNotFound
}

func (r *FakeAccountRepo) ListByUserID(_ context.Context, userID string) ([]*mail.MailAccount, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	accounts := make([]*mail.MailAccount, 0)
	for _, id := range r.order {
		if account := r.accounts[id]; account.UserID == userID {
			accounts = append(accounts, copyAccount(account))
		}
	}
	return accounts, nil
}

func (r *FakeAccountRepo) UpdateTokens(_ context.Context, accountID string, tokens mail.TokenSet) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	account, ok := r.accounts[accountID]
	if !ok {
		return mail.ErrAccountNotFound
	}
	account.Tokens = tokens
	r.updates++
	return nil
}

func (r *FakeAccountRepo) TouchSynced(_ context.Context, accountID string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return mail.ErrAccountNotFound
	}
	account.LastSyncedAt = at
	return nil
}

// Count returns the number of stored accounts.
func (r *FakeAccountRepo) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.accounts)
}

// CreateCalls returns how many accounts were inserted.
func (r *FakeAccountRepo) CreateCalls() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.creates
}

// UpdateCalls returns how many successful UpdateTokens calls were made.
func (r *FakeAccountRepo) UpdateCalls() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.updates
}

func copyAccount(a *mail.MailAccount) *mail.MailAccount {
	c := *a
	return &c
}
