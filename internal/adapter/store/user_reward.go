package store

import (
	"context"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// UserRewardStore persists UserReward records keyed by (campaign, user).
type UserRewardStore struct {
	kv port.KVTx
}

func (s *UserRewardStore) Get(ctx context.Context, user domain.Address, campaignID uint32) (*domain.UserReward, bool, error) {
	var r domain.UserReward
	found, err := getJSON(ctx, s.kv, userRewardKey(user, campaignID), &r)
	if err != nil || !found {
		return nil, false, err
	}
	return &r, true, nil
}

// GetOrNew returns the stored record or a zero record stamped with now.
func (s *UserRewardStore) GetOrNew(ctx context.Context, user domain.Address, campaignID uint32, now uint64) (*domain.UserReward, error) {
	r, found, err := s.Get(ctx, user, campaignID)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NewUserReward(user, campaignID, now), nil
	}
	return r, nil
}

func (s *UserRewardStore) Put(ctx context.Context, r *domain.UserReward) error {
	return putJSON(ctx, s.kv, userRewardKey(r.User, r.CampaignID), r)
}
