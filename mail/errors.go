package mail

import (
	"fmt"

	"github.com/jrsteele09/go-mail-server/internal/errors"
)

var (
	// ErrDuplicateAccount means the provider identity is already linked. It is an expected
	// outcome, not a storage fault.
	ErrDuplicateAccount = fmt.Errorf("mail account already linked: %w", errors.ErrConflict)
	ErrAccountNotFound  = fmt.Errorf("mail account: %w", errors.ErrNotFound)
	ErrDuplicateAddress = fmt.Errorf("email address already exists: %w", errors.ErrConflict)
	ErrInvalidProvider  = fmt.Errorf("mail provider: %w", errors.ErrInvalidRequest)
)
