package linking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/go-mail-server/internal/utils"
	"github.com/jrsteele09/go-mail-server/linking"
	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/stretchr/testify/require"
)

func TestBeginAuthorization(t *testing.T) {
	t.Run("unauthenticated generates nothing", func(t *testing.T) {
		f := newFixture(t)
		auth, err := f.service.BeginAuthorization("")
		require.ErrorIs(t, err, linking.ErrUnauthenticated)
		require.Nil(t, auth)
	})

	t.Run("state is 32 hex characters embedded in the url", func(t *testing.T) {
		f := newFixture(t)
		auth, err := f.service.BeginAuthorization("user-1")
		require.NoError(t, err)
		require.Regexp(t, `^[0-9a-f]{32}$`, auth.State)
		require.Contains(t, auth.RedirectURL, "state="+auth.State)

		other, err := f.service.BeginAuthorization("user-1")
		require.NoError(t, err)
		require.NotEqual(t, auth.State, other.State)
	})
}

func TestHandleCallback_Success(t *testing.T) {
	f := newFixture(t)

	result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
		Code:        "auth-code",
		State:       "s1",
		StoredState: "s1",
		ActiveUser:  activeUser("user-1"),
	})

	require.Equal(t, linking.OutcomeLinked, result.Outcome)
	require.NoError(t, result.AddressErr)
	require.NotNil(t, result.Account)
	require.Equal(t, "user-1", result.Account.UserID)
	require.Equal(t, mail.ProviderGmail, result.Account.Provider)
	require.Equal(t, "u@gmail.com", result.Account.ProviderAccountID)
	require.Equal(t, "u@gmail.com", result.Account.Address)
	require.Equal(t, "at1", result.Account.Tokens.AccessToken)
	require.Equal(t, "rt1", utils.Value(result.Account.Tokens.RefreshToken))

	require.Equal(t, 1, f.repos.Accounts.Count())
	address, err := f.repos.Addresses.GetByAccountID(context.Background(), result.Account.ID)
	require.NoError(t, err)
	require.Equal(t, "u@gmail.com", address.Address)

	require.Equal(t, 2, result.LabelsSynced)
	labels, err := f.repos.Labels.ListByAccountID(context.Background(), result.Account.ID)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	require.Equal(t, result.Account.ID, labels[0].AccountID)
	require.Equal(t, mail.ProviderGmail, labels[0].Provider)

	stored, err := f.repos.Accounts.GetByID(context.Background(), result.Account.ID)
	require.NoError(t, err)
	require.Equal(t, fixedNow, stored.LastSyncedAt)
	require.Equal(t, []string{"user-1"}, f.cache.invalidated)
}

func TestHandleCallback_StateValidation(t *testing.T) {
	tests := []struct {
		name   string
		state  string
		stored string
	}{
		{name: "cookie missing", state: "s1", stored: ""},
		{name: "query state missing", state: "", stored: "s1"},
		{name: "both missing", state: "", stored: ""},
		{name: "one character differs", state: "0123456789abcdef0123456789abcdeg", stored: "0123456789abcdef0123456789abcdef"},
		{name: "case differs", state: "ABC", stored: "abc"},
		{name: "prefix only", state: "abc", stored: "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
				Code:        "auth-code",
				State:       tt.state,
				StoredState: tt.stored,
				ActiveUser:  activeUser("user-1"),
			})

			require.Equal(t, linking.OutcomeStateMismatch, result.Outcome)
			require.Equal(t, "oauth_state", result.Outcome.ErrorCode())
			require.Zero(t, f.provider.exchangeCalls)
			require.Zero(t, f.provider.profileCalls)
		})
	}
}

func TestHandleCallback_MissingCode(t *testing.T) {
	f := newFixture(t)

	result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
		State:       "s1",
		StoredState: "s1",
		ActiveUser:  activeUser("user-1"),
	})

	require.Equal(t, linking.OutcomeMissingCode, result.Outcome)
	require.Empty(t, result.Outcome.ErrorCode())
	require.True(t, result.Outcome.ToSignIn())
	require.Zero(t, f.provider.exchangeCalls)
}

func TestHandleCallback_Aborts(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(f *fixture)
		user    string
		want    linking.Outcome
	}{
		{
			name:    "exchange rejected",
			arrange: func(f *fixture) { f.provider.exchangeErr = errProvider },
			user:    "user-1",
			want:    linking.OutcomeExchangeFailed,
		},
		{
			name:    "no access token",
			arrange: func(f *fixture) { f.provider.exchangeTokens = mail.TokenSet{RefreshToken: utils.Ptr("rt1")} },
			user:    "user-1",
			want:    linking.OutcomeNoAccessToken,
		},
		{
			name:    "profile fetch failed",
			arrange: func(f *fixture) { f.provider.profile = nil },
			user:    "user-1",
			want:    linking.OutcomeProfileUnavailable,
		},
		{
			name:    "profile without address",
			arrange: func(f *fixture) { f.provider.profile = &mail.Profile{MessagesTotal: 100} },
			user:    "user-1",
			want:    linking.OutcomeProfileUnavailable,
		},
		{
			name:    "no active user",
			arrange: func(f *fixture) {},
			user:    "",
			want:    linking.OutcomeUnauthenticated,
		},
		{
			name:    "account insert failed",
			arrange: func(f *fixture) { f.repos.Accounts.CreateErr = errors.New("connection reset") },
			user:    "user-1",
			want:    linking.OutcomeAccountPersistFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.arrange(f)

			result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
				Code:        "auth-code",
				State:       "s1",
				StoredState: "s1",
				ActiveUser:  activeUser(tt.user),
			})

			require.Equal(t, tt.want, result.Outcome)
			require.NotEmpty(t, result.Outcome.ErrorCode())
			require.Nil(t, result.Account)
			require.Equal(t, 0, f.repos.Accounts.Count())
			require.Equal(t, 0, f.repos.Addresses.Count())
			require.Zero(t, f.provider.labelCalls)
		})
	}
}

func TestHandleCallback_ActiveUserResolvedAfterProfile(t *testing.T) {
	f := newFixture(t)
	f.provider.profile = nil

	called := false
	result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
		Code:        "auth-code",
		State:       "s1",
		StoredState: "s1",
		ActiveUser: func() (string, bool) {
			called = true
			return "user-1", true
		},
	})

	require.Equal(t, linking.OutcomeProfileUnavailable, result.Outcome)
	require.False(t, called)
}

func TestHandleCallback_DuplicateAccount(t *testing.T) {
	f := newFixture(t)
	in := linking.CallbackInput{Code: "auth-code", State: "s1", StoredState: "s1", ActiveUser: activeUser("user-1")}

	first := f.service.HandleCallback(context.Background(), in)
	require.Equal(t, linking.OutcomeLinked, first.Outcome)

	second := f.service.HandleCallback(context.Background(), in)
	require.Equal(t, linking.OutcomeDuplicateAccount, second.Outcome)
	require.ErrorIs(t, second.Err, mail.ErrDuplicateAccount)
	require.Equal(t, "account_exists", second.Outcome.ErrorCode())

	require.Equal(t, 1, f.repos.Accounts.Count())
	require.Equal(t, 1, f.repos.Addresses.Count())
}

func TestHandleCallback_BestEffortSteps(t *testing.T) {
	t.Run("address failure does not block the link", func(t *testing.T) {
		f := newFixture(t)
		f.repos.Addresses.CreateErr = errors.New("address table locked")

		result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
			Code: "auth-code", State: "s1", StoredState: "s1", ActiveUser: activeUser("user-1"),
		})

		require.Equal(t, linking.OutcomeLinked, result.Outcome)
		require.Error(t, result.AddressErr)
		require.Nil(t, result.Address)
		require.Equal(t, 1, f.repos.Accounts.Count())
	})

	t.Run("label fetch failure does not block the link", func(t *testing.T) {
		f := newFixture(t)
		f.provider.labelsErr = errProvider

		result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
			Code: "auth-code", State: "s1", StoredState: "s1", ActiveUser: activeUser("user-1"),
		})

		require.Equal(t, linking.OutcomeLinked, result.Outcome)
		require.Zero(t, result.LabelsSynced)
	})

	t.Run("label store failure does not block the link", func(t *testing.T) {
		f := newFixture(t)
		f.repos.Labels.SaveErr = errors.New("disk full")

		result := f.service.HandleCallback(context.Background(), linking.CallbackInput{
			Code: "auth-code", State: "s1", StoredState: "s1", ActiveUser: activeUser("user-1"),
		})

		require.Equal(t, linking.OutcomeLinked, result.Outcome)
		require.Zero(t, result.LabelsSynced)
	})
}

func TestOutcomeRouting(t *testing.T) {
	require.True(t, linking.OutcomeLinked.Succeeded())
	require.Empty(t, linking.OutcomeLinked.ErrorCode())
	require.False(t, linking.OutcomeLinked.ToSignIn())

	require.True(t, linking.OutcomeUnauthenticated.ToSignIn())
	require.False(t, linking.OutcomeDuplicateAccount.ToSignIn())
	require.Equal(t, "oauth_exchange", linking.OutcomeExchangeFailed.ErrorCode())
	require.Equal(t, "duplicate_account", linking.OutcomeDuplicateAccount.String())
	require.Equal(t, "unknown", linking.Outcome(99).String())
}
