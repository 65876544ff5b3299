package linking

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jrsteele09/go-mail-server/internal/errors"
)

var ErrUnauthenticated = fmt.Errorf("no active user session: %w", errors.ErrUnauthorized)

// Authorization is what the initiation endpoint needs to redirect the browser: the state
// to store in the cookie and the consent URL carrying it.
type Authorization struct {
	State       string
	RedirectURL string
}

// BeginAuthorization starts a link for the active user. With no user it returns
// ErrUnauthenticated and generates nothing.
func (s *Service) BeginAuthorization(activeUserID string) (*Authorization, error) {
	if activeUserID == "" {
		return nil, ErrUnauthenticated
	}

	state, err := GenerateState(s.opts.StateBytes)
	if err != nil {
		return nil, err
	}

	return &Authorization{
		State:       state,
		RedirectURL: s.provider.AuthURL(state),
	}, nil
}

// GenerateState returns n random bytes, hex encoded.
func GenerateState(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[linking GenerateState] %w", err)
	}
	return hex.EncodeToString(b), nil
}
