package store

import (
	"context"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// InstanceStore holds the two singleton slots: the admin and the campaign
// counter.
type InstanceStore struct {
	kv port.KVTx
}

// Admin returns the admin principal, if one was set.
func (s *InstanceStore) Admin(ctx context.Context) (domain.Address, bool, error) {
	var admin domain.Address
	found, err := getJSON(ctx, s.kv, adminKey(), &admin)
	if err != nil || !found {
		return "", false, err
	}
	return admin, true, nil
}

func (s *InstanceStore) HasAdmin(ctx context.Context) (bool, error) {
	return s.kv.Has(ctx, adminKey())
}

func (s *InstanceStore) SetAdmin(ctx context.Context, admin domain.Address) error {
	return putJSON(ctx, s.kv, adminKey(), admin)
}

// CampaignCount returns the highest campaign id assigned so far, 0 when
// none.
func (s *InstanceStore) CampaignCount(ctx context.Context) (uint32, error) {
	var count uint32
	if _, err := getJSON(ctx, s.kv, campaignCountKey(), &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *InstanceStore) SetCampaignCount(ctx context.Context, count uint32) error {
	return putJSON(ctx, s.kv, campaignCountKey(), count)
}
