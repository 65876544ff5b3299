package repopg

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-mail-server/internal/seal"
	"github.com/jrsteele09/go-mail-server/mail"
)

// NewRepos builds the postgres-backed repositories over one pool.
func NewRepos(pool *pgxpool.Pool, sealer seal.Sealer) mail.Repos {
	return mail.Repos{
		Accounts:  NewAccountRepo(pool, sealer),
		Addresses: NewAddressRepo(pool),
		Labels:    NewLabelRepo(pool),
	}
}
