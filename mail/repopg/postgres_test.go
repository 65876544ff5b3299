package repopg

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/go-mail-server/internal/seal"
	"github.com/jrsteele09/go-mail-server/internal/utils"
	"github.com/jrsteele09/go-mail-server/mail"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(fmt.Errorf("boom")))
	require.False(t, isUniqueViolation(nil))
}

func TestSealTokens(t *testing.T) {
	sealer, err := seal.New("AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=")
	require.NoError(t, err)

	t.Run("refresh token absent stays null", func(t *testing.T) {
		access, refresh, err := sealTokens(sealer, mail.TokenSet{AccessToken: "at"})
		require.NoError(t, err)
		require.NotEqual(t, "at", access)
		require.Nil(t, refresh)

		opened, err := sealer.Open(access)
		require.NoError(t, err)
		require.Equal(t, "at", opened)
	})

	t.Run("refresh token sealed", func(t *testing.T) {
		_, refresh, err := sealTokens(sealer, mail.TokenSet{AccessToken: "at", RefreshToken: utils.Ptr("rt")})
		require.NoError(t, err)
		require.NotNil(t, refresh)

		opened, err := sealer.Open(*refresh)
		require.NoError(t, err)
		require.Equal(t, "rt", opened)
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	for _, stmt := range migrations {
		require.Regexp(t, `IF NOT EXISTS`, stmt)
	}
}
