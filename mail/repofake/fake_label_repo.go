package repofake

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-mail-server/mail"
)

var _ mail.LabelRepo = (*FakeLabelRepo)(nil)

type FakeLabelRepo struct {
	labels map[string][]mail.Label // accountID -> labels
	lock   sync.RWMutex

	// SaveErr, when set, is returned by SaveAll.
	SaveErr error
}

func NewFakeLabelRepo() *FakeLabelRepo {
	return &FakeLabelRepo{
		labels: make(map[string][]mail.Label),
	}
}

// SaveAll upserts labels keyed by (account, provider label id).
func (r *FakeLabelRepo) SaveAll(_ context.Context, labels []mail.Label) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}
	for _, label := range labels {
		if label.ID == "" {
			label.ID = uuid.NewString()
		}
		existing := r.labels[label.AccountID]
		replaced := false
		for i := range existing {
			if existing[i].ProviderLabelID == label.ProviderLabelID {
				label.ID = existing[i].ID
				existing[i] = label
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, label)
		}
		r.labels[label.AccountID] = existing
	}
	return nil
}

func (r *FakeLabelRepo) ListByAccountID(_ context.Context, accountID string) ([]mail.Label, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	labels := make([]mail.Label, len(r.labels[accountID]))
	copy(labels, r.labels[accountID])
	return labels, nil
}
