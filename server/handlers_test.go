package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-mail-server/internal/utils"
	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/jrsteele09/go-mail-server/server"
	"github.com/stretchr/testify/require"
)

func (f *testFixture) storeAccount(t *testing.T, tokens mail.TokenSet) *mail.MailAccount {
	t.Helper()
	account, err := f.repos.Accounts.Create(context.Background(), mail.NewMailAccount{
		UserID:            testUserID,
		Provider:          mail.ProviderGmail,
		ProviderAccountID: "u@gmail.com",
		Address:           "u@gmail.com",
		Tokens:            tokens,
	})
	require.NoError(t, err)
	return account
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body["error"]
}

func TestGmailLabels(t *testing.T) {
	expired := utils.Ptr(time.Now().Add(-time.Hour))

	t.Run("no session", func(t *testing.T) {
		f := setupTestFixture(t)
		w := f.do(httptest.NewRequest(http.MethodGet, server.RouteGmailLabels, nil))

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Unauthorized: No active user session", decodeError(t, w))
	})

	t.Run("no linked account", func(t *testing.T) {
		f := setupTestFixture(t)
		w := f.do(withSession(httptest.NewRequest(http.MethodGet, server.RouteGmailLabels, nil), testUserID))

		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Unauthorized: No access token found", decodeError(t, w))
	})

	t.Run("expired without refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.storeAccount(t, mail.TokenSet{AccessToken: "at1", AccessTokenExpiresAt: expired})

		w := f.do(withSession(httptest.NewRequest(http.MethodGet, server.RouteGmailLabels, nil), testUserID))
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Access token expired, and no refresh token present.", decodeError(t, w))
	})

	t.Run("refresh rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		f.storeAccount(t, mail.TokenSet{AccessToken: "at1", RefreshToken: utils.Ptr("rt1"), AccessTokenExpiresAt: expired})

		w := f.do(withSession(httptest.NewRequest(http.MethodGet, server.RouteGmailLabels, nil), testUserID))
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Unable to refresh tokens.", decodeError(t, w))
		require.Equal(t, 1, f.provider.refreshCalls)
	})

	t.Run("gmail failure", func(t *testing.T) {
		f := setupTestFixture(t)
		f.storeAccount(t, mail.TokenSet{AccessToken: "at1"})
		f.provider.labelsErr = errors.New("503")

		w := f.do(withSession(httptest.NewRequest(http.MethodGet, server.RouteGmailLabels, nil), testUserID))
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, "Failed to fetch labels from Gmail API", decodeError(t, w))
	})

	t.Run("labels returned after refresh", func(t *testing.T) {
		f := setupTestFixture(t)
		account := f.storeAccount(t, mail.TokenSet{AccessToken: "stale", RefreshToken: utils.Ptr("rt1"), AccessTokenExpiresAt: expired})
		f.provider.refreshed = &mail.TokenSet{AccessToken: "fresh", AccessTokenExpiresAt: utils.Ptr(time.Now().Add(time.Hour))}

		w := f.do(withSession(httptest.NewRequest(http.MethodGet, server.RouteGmailLabels, nil), testUserID))
		require.Equal(t, http.StatusOK, w.Code)

		var labels []mail.Label
		require.NoError(t, json.NewDecoder(w.Body).Decode(&labels))
		require.Len(t, labels, 1)
		require.Equal(t, account.ID, labels[0].AccountID)

		stored, err := f.repos.Accounts.GetByID(context.Background(), account.ID)
		require.NoError(t, err)
		require.Equal(t, "fresh", stored.Tokens.AccessToken)
	})
}

func TestMailAccounts(t *testing.T) {
	f := setupTestFixture(t)
	account := f.storeAccount(t, mail.TokenSet{AccessToken: "secret-access-token"})

	w := f.do(withSession(httptest.NewRequest(http.MethodGet, server.RouteMailAccount, nil), testUserID))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "secret-access-token")

	var accounts []mail.AccountSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&accounts))
	require.Len(t, accounts, 1)
	require.Equal(t, account.ID, accounts[0].ID)
	require.Equal(t, "u@gmail.com", accounts[0].Address)
}
