package seal_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/jrsteele09/go-mail-server/internal/seal"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestSealer(t *testing.T) {
	s, err := seal.New(testKey())
	require.NoError(t, err)

	t.Run("sealed value hides plaintext", func(t *testing.T) {
		sealed, err := s.Seal("ya29.access-token")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(sealed, "sealed:v1:"))
		require.NotContains(t, sealed, "ya29")

		opened, err := s.Open(sealed)
		require.NoError(t, err)
		require.Equal(t, "ya29.access-token", opened)
	})

	t.Run("nonce differs per seal", func(t *testing.T) {
		a, err := s.Seal("same")
		require.NoError(t, err)
		b, err := s.Seal("same")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("empty stays empty", func(t *testing.T) {
		sealed, err := s.Seal("")
		require.NoError(t, err)
		require.Empty(t, sealed)
	})

	t.Run("unsealed values pass through open", func(t *testing.T) {
		opened, err := s.Open("legacy-plain-token")
		require.NoError(t, err)
		require.Equal(t, "legacy-plain-token", opened)
	})

	t.Run("tampered ciphertext is rejected", func(t *testing.T) {
		sealed, err := s.Seal("refresh-token")
		require.NoError(t, err)
		raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, "sealed:v1:"))
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		_, err = s.Open("sealed:v1:" + base64.RawURLEncoding.EncodeToString(raw))
		require.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	t.Run("empty key gives pass-through", func(t *testing.T) {
		s, err := seal.New("")
		require.NoError(t, err)
		v, err := s.Seal("token")
		require.NoError(t, err)
		require.Equal(t, "token", v)
	})

	t.Run("short key rejected", func(t *testing.T) {
		_, err := seal.New(base64.StdEncoding.EncodeToString([]byte("short")))
		require.ErrorIs(t, err, seal.ErrInvalidKey)
	})

	t.Run("invalid base64 rejected", func(t *testing.T) {
		_, err := seal.New("***")
		require.Error(t, err)
	})
}
