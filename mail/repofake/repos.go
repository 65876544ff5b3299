package repofake

import "github.com/jrsteele09/go-mail-server/mail"

// FakeRepos bundles the in-memory repositories so tests can inspect them directly.
type FakeRepos struct {
	Accounts  *FakeAccountRepo
	Addresses *FakeAddressRepo
	Labels    *FakeLabelRepo
}

func NewFakeRepos() *FakeRepos {
	return &FakeRepos{
		Accounts:  NewFakeAccountRepo(),
		Addresses: NewFakeAddressRepo(),
		Labels:    NewFakeLabelRepo(),
	}
}

// Repos returns the interface view used by the services.
func (f *FakeRepos) Repos() mail.Repos {
	return mail.Repos{
		Accounts:  f.Accounts,
		Addresses: f.Addresses,
		Labels:    f.Labels,
	}
}
