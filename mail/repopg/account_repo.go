package repopg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-mail-server/internal/seal"
	"github.com/jrsteele09/go-mail-server/mail"
)

var _ mail.AccountRepo = (*AccountRepo)(nil)

const accountColumns = `id, user_id, provider, provider_account_id, address,
	access_token, refresh_token, access_token_expires_at, refresh_token_expires_at, last_synced_at`

// AccountRepo stores mail accounts with their tokens sealed at rest.
type AccountRepo struct {
	pool   *pgxpool.Pool
	sealer seal.Sealer
}

func NewAccountRepo(pool *pgxpool.Pool, sealer seal.Sealer) *AccountRepo {
	if sealer == nil {
		sealer = seal.Noop{}
	}
	return &AccountRepo{pool: pool, sealer: sealer}
}

// Create inserts the account. A clash on provider identity or address is reported as
// mail.ErrDuplicateAccount whether it is caught by ON CONFLICT or by a concurrent insert.
func (r *AccountRepo) Create(ctx context.Context, account mail.NewMailAccount) (*mail.MailAccount, error) {
	if _, err := mail.ParseProvider(string(account.Provider)); err != nil {
		return nil, fmt.Errorf("[AccountRepo Create] %w", err)
	}

	accessToken, refreshToken, err := sealTokens(r.sealer, account.Tokens)
	if err != nil {
		return nil, fmt.Errorf("[AccountRepo Create] %w", err)
	}

	id := uuid.NewString()
	var lastSynced time.Time
	err = r.pool.QueryRow(ctx, `
		INSERT INTO mail_account (id, user_id, provider, provider_account_id, address,
			access_token, refresh_token, access_token_expires_at, refresh_token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT DO NOTHING
		RETURNING last_synced_at`,
		id, account.UserID, string(account.Provider), account.ProviderAccountID, account.Address,
		accessToken, refreshToken, account.Tokens.AccessTokenExpiresAt, account.Tokens.RefreshTokenExpiresAt,
	).Scan(&lastSynced)
	switch {
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		return nil, mail.ErrDuplicateAccount
	case err != nil:
		return nil, fmt.Errorf("[AccountRepo Create] insert: %w", err)
	}

	return &mail.MailAccount{
		ID:                id,
		UserID:            account.UserID,
		Provider:          account.Provider,
		ProviderAccountID: account.ProviderAccountID,
		Address:           account.Address,
		Tokens:            account.Tokens,
		LastSyncedAt:      lastSynced,
	}, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, accountID string) (*mail.MailAccount, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM mail_account WHERE id = $1`, accountID)
	return r.scanAccount(row)
}

func (r *AccountRepo) GetTokenAccount(ctx context.Context, userID string, provider mail.Provider) (*mail.MailAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM mail_account
		WHERE user_id = $1 AND provider = $2
		ORDER BY created_at DESC
		LIMIT 1`, userID, string(provider))
	return r.scanAccount(row)
}

func (r *AccountRepo) ListByUserID(ctx context.Context, userID string) ([]*mail.MailAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM mail_account
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("[AccountRepo ListByUserID] query: %w", err)
	}
	defer rows.Close()

	accounts := make([]*mail.MailAccount, 0)
	for rows.Next() {
		account, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[AccountRepo ListByUserID] rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepo) UpdateTokens(ctx context.Context, accountID string, tokens mail.TokenSet) error {
	accessToken, refreshToken, err := sealTokens(r.sealer, tokens)
	if err != nil {
		return fmt.Errorf("[AccountRepo UpdateTokens] %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE mail_account
		SET access_token = $2, refresh_token = $3,
			access_token_expires_at = $4, refresh_token_expires_at = $5
		WHERE id = $1`,
		accountID, accessToken, refreshToken, tokens.AccessTokenExpiresAt, tokens.RefreshTokenExpiresAt)
	if err != nil {
		return fmt.Errorf("[AccountRepo UpdateTokens] update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mail.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepo) TouchSynced(ctx context.Context, accountID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE mail_account SET last_synced_at = $2 WHERE id = $1`, accountID, at)
	if err != nil {
		return fmt.Errorf("[AccountRepo TouchSynced] update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mail.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepo) scanAccount(row pgx.Row) (*mail.MailAccount, error) {
	var (
		account      mail.MailAccount
		provider     string
		accessToken  string
		refreshToken *string
	)
	err := row.Scan(&account.ID, &account.UserID, &provider, &account.ProviderAccountID, &account.Address,
		&accessToken, &refreshToken, &account.Tokens.AccessTokenExpiresAt, &account.Tokens.RefreshTokenExpiresAt,
		&account.LastSyncedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mail.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[AccountRepo scan] %w", err)
	}

	account.Provider, err = mail.ParseProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("[AccountRepo scan] %w", err)
	}
	account.Tokens.AccessToken, err = r.sealer.Open(accessToken)
	if err != nil {
		return nil, fmt.Errorf("[AccountRepo scan] open access token: %w", err)
	}
	if refreshToken != nil {
		opened, err := r.sealer.Open(*refreshToken)
		if err != nil {
			return nil, fmt.Errorf("[AccountRepo scan] open refresh token: %w", err)
		}
		account.Tokens.RefreshToken = &opened
	}
	return &account, nil
}

func sealTokens(sealer seal.Sealer, tokens mail.TokenSet) (string, *string, error) {
	accessToken, err := sealer.Seal(tokens.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("seal access token: %w", err)
	}
	if !tokens.HasRefreshToken() {
		return accessToken, nil, nil
	}
	refreshToken, err := sealer.Seal(*tokens.RefreshToken)
	if err != nil {
		return "", nil, fmt.Errorf("seal refresh token: %w", err)
	}
	return accessToken, &refreshToken, nil
}
