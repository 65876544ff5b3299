package repopg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-mail-server/internal/utils"
	"github.com/jrsteele09/go-mail-server/mail"
)

var _ mail.AddressRepo = (*AddressRepo)(nil)

type AddressRepo struct {
	pool *pgxpool.Pool
}

func NewAddressRepo(pool *pgxpool.Pool) *AddressRepo {
	return &AddressRepo{pool: pool}
}

func (r *AddressRepo) Create(ctx context.Context, address mail.NewEmailAddress) (*mail.EmailAddress, error) {
	created := mail.EmailAddress{
		ID:        uuid.NewString(),
		Address:   address.Address,
		AccountID: address.AccountID,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO email_address (id, address, account_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id`, created.ID, created.Address, created.AccountID).Scan(&created.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		return nil, mail.ErrDuplicateAddress
	case err != nil:
		return nil, fmt.Errorf("[AddressRepo Create] insert: %w", err)
	}
	return &created, nil
}

func (r *AddressRepo) GetByAccountID(ctx context.Context, accountID string) (*mail.EmailAddress, error) {
	var (
		address mail.EmailAddress
		name    *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, address, account_id FROM email_address WHERE account_id = $1`, accountID,
	).Scan(&address.ID, &name, &address.Address, &address.AccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mail.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[AddressRepo GetByAccountID] %w", err)
	}
	address.Name = utils.Value(name)
	return &address, nil
}
