package repopg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-mail-server/mail"
)

var _ mail.LabelRepo = (*LabelRepo)(nil)

type LabelRepo struct {
	pool *pgxpool.Pool
}

func NewLabelRepo(pool *pgxpool.Pool) *LabelRepo {
	return &LabelRepo{pool: pool}
}

// SaveAll upserts every label in a single batch.
func (r *LabelRepo) SaveAll(ctx context.Context, labels []mail.Label) error {
	if len(labels) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, label := range labels {
		id := label.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(`
			INSERT INTO mail_label (id, account_id, provider, provider_label_id, name, type, messages_total, messages_unread)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (account_id, provider_label_id) DO UPDATE
			SET name = EXCLUDED.name, type = EXCLUDED.type,
				messages_total = EXCLUDED.messages_total, messages_unread = EXCLUDED.messages_unread`,
			id, label.AccountID, string(label.Provider), label.ProviderLabelID, label.Name, label.Type,
			label.MessagesTotal, label.MessagesUnread)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range labels {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("[LabelRepo SaveAll] upsert: %w", err)
		}
	}
	return nil
}

func (r *LabelRepo) ListByAccountID(ctx context.Context, accountID string) ([]mail.Label, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, provider, provider_label_id, name, type, messages_total, messages_unread
		FROM mail_label
		WHERE account_id = $1
		ORDER BY name`, accountID)
	if err != nil {
		return nil, fmt.Errorf("[LabelRepo ListByAccountID] query: %w", err)
	}
	defer rows.Close()

	labels := make([]mail.Label, 0)
	for rows.Next() {
		var (
			label    mail.Label
			provider string
		)
		if err := rows.Scan(&label.ID, &label.AccountID, &provider, &label.ProviderLabelID, &label.Name,
			&label.Type, &label.MessagesTotal, &label.MessagesUnread); err != nil {
			return nil, fmt.Errorf("[LabelRepo ListByAccountID] scan: %w", err)
		}
		parsed, err := mail.ParseProvider(provider)
		if err != nil {
			return nil, fmt.Errorf("[LabelRepo ListByAccountID] %w", err)
		}
		label.Provider = parsed
		labels = append(labels, label)
	}
	return labels, rows.Err()
}
