package repofake

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-mail-server/mail"
)

var _ mail.AddressRepo = (*FakeAddressRepo)(nil)

type FakeAddressRepo struct {
	addresses map[string]*mail.EmailAddress // accountID -> address
	lock      sync.RWMutex

	// CreateErr, when set, is returned by Create instead of inserting.
	CreateErr error
}

func NewFakeAddressRepo() *FakeAddressRepo {
	return &FakeAddressRepo{
		addresses: make(map[string]*mail.EmailAddress),
	}
}

func (r *FakeAddressRepo) Create(_ context.Context, address mail.NewEmailAddress) (*mail.EmailAddress, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	if _, ok := r.addresses[address.AccountID]; ok {
		return nil, mail.ErrDuplicateAddress
	}
	for _, existing := range r.addresses {
		if strings.EqualFold(existing.Address, address.Address) {
			return nil, mail.ErrDuplicateAddress
		}
	}

	created := &mail.EmailAddress{
		ID:        uuid.NewString(),
		Address:   address.Address,
		AccountID: address.AccountID,
	}
	r.addresses[address.AccountID] = created

	c := *created
	return &c, nil
}

func (r *FakeAddressRepo) GetByAccountID(_ context.Context, accountID string) (*mail.EmailAddress, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	address, ok := r.addresses[accountID]
	if !ok {
		return nil, mail.ErrAccountNotFound
	}
	c := *address
	return &c, nil
}

// Count returns the number of stored address records.
func (r *FakeAddressRepo) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.addresses)
}
