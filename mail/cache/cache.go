// Package cache keeps short-lived copies of per-user account listings.
package cache

import (
	"context"

	"github.com/jrsteele09/go-mail-server/mail"
)

// AccountCache caches the account summaries shown for a user.
// A miss is reported with ok == false and a nil error.
type AccountCache interface {
	Get(ctx context.Context, userID string) (summaries []mail.AccountSummary, ok bool, err error)
	Set(ctx context.Context, userID string, summaries []mail.AccountSummary) error
	Invalidate(ctx context.Context, userID string) error
}

var _ AccountCache = Noop{}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]mail.AccountSummary, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []mail.AccountSummary) error         { return nil }
func (Noop) Invalidate(context.Context, string) error                          { return nil }
