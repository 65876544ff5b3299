package linking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-mail-server/internal/utils"
	"github.com/jrsteele09/go-mail-server/linking"
	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/jrsteele09/go-mail-server/mail/repofake"
)

var (
	fixedNow    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	errProvider = errors.New("provider unavailable")
)

type fakeProvider struct {
	mu sync.Mutex

	exchangeTokens mail.TokenSet
	exchangeErr    error
	profile        *mail.Profile
	refreshed      *mail.TokenSet
	labels         []mail.Label
	labelsErr      error

	exchangeCalls int
	profileCalls  int
	refreshCalls  int
	labelCalls    int
	lastRefresh   string
	lastLabelAuth string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		exchangeTokens: mail.TokenSet{
			AccessToken:          "at1",
			RefreshToken:         utils.Ptr("rt1"),
			AccessTokenExpiresAt: utils.Ptr(fixedNow.Add(time.Hour)),
		},
		profile: &mail.Profile{EmailAddress: "u@gmail.com", MessagesTotal: 10},
		labels: []mail.Label{
			{ProviderLabelID: "INBOX", Name: "INBOX", Type: "system"},
			{ProviderLabelID: "Label_1", Name: "Receipts", Type: "user"},
		},
	}
}

func (p *fakeProvider) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, _ string) (mail.TokenSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exchangeCalls++
	return p.exchangeTokens, p.exchangeErr
}

func (p *fakeProvider) Refresh(_ context.Context, refreshToken string) *mail.TokenSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshCalls++
	p.lastRefresh = refreshToken
	return p.refreshed
}

func (p *fakeProvider) FetchProfile(_ context.Context, _ mail.TokenSet) *mail.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profileCalls++
	return p.profile
}

func (p *fakeProvider) ListLabels(_ context.Context, tokens mail.TokenSet) ([]mail.Label, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labelCalls++
	p.lastLabelAuth = tokens.AccessToken
	if p.labelsErr != nil {
		return nil, p.labelsErr
	}
	labels := make([]mail.Label, len(p.labels))
	copy(labels, p.labels)
	return labels, nil
}

type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]mail.AccountSummary
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]mail.AccountSummary)}
}

func (c *memoryCache) Get(_ context.Context, userID string) ([]mail.AccountSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[userID]
	return s, ok, nil
}

func (c *memoryCache) Set(_ context.Context, userID string, s []mail.AccountSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = s
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

type fixture struct {
	provider *fakeProvider
	repos    *repofake.FakeRepos
	cache    *memoryCache
	service  *linking.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	linking.NowTimeFunc = func() time.Time { return fixedNow }
	t.Cleanup(func() { linking.NowTimeFunc = time.Now })

	f := &fixture{
		provider: newFakeProvider(),
		repos:    repofake.NewFakeRepos(),
		cache:    newMemoryCache(),
	}
	f.service = linking.NewService(f.provider, f.repos.Repos(), f.cache, linking.Options{
		StateBytes:  16,
		RefreshSkew: time.Minute,
		SyncLabels:  true,
	})
	return f
}

func activeUser(id string) func() (string, bool) {
	return func() (string, bool) { return id, id != "" }
}

// linkAccount stores a Gmail account for userID directly in the fake repo.
func (f *fixture) linkAccount(t *testing.T, userID string, tokens mail.TokenSet) *mail.MailAccount {
	t.Helper()
	account, err := f.repos.Accounts.Create(context.Background(), mail.NewMailAccount{
		UserID:            userID,
		Provider:          mail.ProviderGmail,
		ProviderAccountID: userID + "@gmail.com",
		Address:           userID + "@gmail.com",
		Tokens:            tokens,
	})
	if err != nil {
		t.Fatalf("link account: %v", err)
	}
	return account
}
