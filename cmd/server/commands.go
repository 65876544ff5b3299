package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-mail-server/internal/config"
	"github.com/jrsteele09/go-mail-server/internal/logging"
	"github.com/jrsteele09/go-mail-server/mail/repopg"
	"github.com/jrsteele09/go-mail-server/sessions"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mail-server",
		Short:         "Mail server API",
		Long:          "Links Gmail mailboxes to application users and serves their mail data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c := config.New()
			logging.Setup(c.GetEnv(), c.GetLogLevel())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.New())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(config.New())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context(), config.New())
			},
		},
		newSessionTokenCmd(),
	)
	return root
}

func migrate(ctx context.Context, c config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	pool, err := repopg.Open(ctx, c.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("[migrate] %w", err)
	}
	defer pool.Close()

	return repopg.Migrate(ctx, pool)
}

// newSessionTokenCmd issues a session token for local testing against SESSION_SECRET.
func newSessionTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "session-token",
		Short: "Print a signed session token for a user (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.New()
			if c.GetEnv() != "DEV" {
				return errors.New("session-token is only available when ENV=DEV")
			}
			resolver := sessions.NewJWTResolver(c.GetSessionSecret(), c.GetSessionCookieName(), c.GetSessionIssuer())
			token, err := resolver.Issue(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
