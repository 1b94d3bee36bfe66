package store

import (
	"context"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// CampaignStore persists Campaign records keyed by id.
type CampaignStore struct {
	kv port.KVTx
}

// Get returns the campaign with id. found is false when it does not exist.
func (s *CampaignStore) Get(ctx context.Context, id uint32) (*domain.Campaign, bool, error) {
	var c domain.Campaign
	found, err := getJSON(ctx, s.kv, campaignKey(id), &c)
	if err != nil || !found {
		return nil, false, err
	}
	return &c, true, nil
}

func (s *CampaignStore) Put(ctx context.Context, c *domain.Campaign) error {
	return putJSON(ctx, s.kv, campaignKey(c.ID), c)
}
