package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"reward-ledger/internal/adapter/store"
	"reward-ledger/internal/core/domain"
)

// ClaimRewards pays out the user's unclaimed balance in one campaign. The
// ledger record is settled and the transfer issued in the same unit, so a
// failed transfer leaves the balance claimable.
func (l *Ledger) ClaimRewards(ctx context.Context, user domain.Address, campaignID uint32) (*big.Int, error) {
	if err := l.gate.Require(ctx, user); err != nil {
		l.rejected("claim_rewards", err, slog.String("user", user.String()), slog.Any("campaign_id", campaignID))
		return nil, err
	}
	var (
		amount *big.Int
		token  domain.Address
	)
	err := l.update(ctx, func(s *store.Stores) error {
		c, found, err := s.Campaigns.Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrCampaignNotFound
		}
		r, found, err := s.Rewards.Get(ctx, user, campaignID)
		if err != nil {
			return err
		}
		if !found || !r.Claimable() {
			return domain.ErrInsufficientFunds
		}
		amount, err = l.settle(ctx, s, c, r)
		token = c.RewardToken
		return err
	})
	if err != nil {
		l.rejected("claim_rewards", err, slog.String("user", user.String()), slog.Any("campaign_id", campaignID))
		return nil, err
	}
	l.claimed(ctx, campaignID, user, token, amount)
	return amount, nil
}

// ClaimAllRewards claims every campaign in which the user has a positive
// unclaimed balance, in ascending id order. Each campaign is its own unit:
// when a payout fails the claims already made stay committed and are
// returned together with the error.
func (l *Ledger) ClaimAllRewards(ctx context.Context, user domain.Address) ([]domain.CampaignReward, error) {
	if err := l.gate.Require(ctx, user); err != nil {
		l.rejected("claim_all_rewards", err, slog.String("user", user.String()))
		return nil, err
	}
	pending, err := l.GetUserAllRewards(ctx, user)
	if err != nil {
		return nil, err
	}

	claims := make([]domain.CampaignReward, 0, len(pending))
	for _, p := range pending {
		var (
			amount *big.Int
			token  domain.Address
		)
		err := l.update(ctx, func(s *store.Stores) error {
			c, found, err := s.Campaigns.Get(ctx, p.CampaignID)
			if err != nil || !found {
				return err
			}
			r, found, err := s.Rewards.Get(ctx, user, p.CampaignID)
			if err != nil || !found || !r.Claimable() {
				return err
			}
			amount, err = l.settle(ctx, s, c, r)
			token = c.RewardToken
			return err
		})
		if err != nil {
			l.rejected("claim_all_rewards", err,
				slog.String("user", user.String()),
				slog.Any("campaign_id", p.CampaignID),
				slog.Int("claimed", len(claims)))
			return claims, fmt.Errorf("claim campaign %d: %w", p.CampaignID, err)
		}
		if amount == nil {
			continue
		}
		l.claimed(ctx, p.CampaignID, user, token, amount)
		claims = append(claims, domain.CampaignReward{CampaignID: p.CampaignID, Amount: amount})
	}
	return claims, nil
}

// GetUserRewards returns the unclaimed balance, zero when the user has no
// record in the campaign.
func (l *Ledger) GetUserRewards(ctx context.Context, user domain.Address, campaignID uint32) (*big.Int, error) {
	amount := big.NewInt(0)
	err := l.view(ctx, func(s *store.Stores) error {
		r, found, err := s.Rewards.Get(ctx, user, campaignID)
		if err != nil || !found || r.UnclaimedAmount == nil {
			return err
		}
		amount.Set(r.UnclaimedAmount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// GetUserAllRewards lists the campaigns with a strictly positive unclaimed
// balance, ascending by id.
func (l *Ledger) GetUserAllRewards(ctx context.Context, user domain.Address) ([]domain.CampaignReward, error) {
	rewards := make([]domain.CampaignReward, 0)
	err := l.view(ctx, func(s *store.Stores) error {
		count, err := s.Instance.CampaignCount(ctx)
		if err != nil {
			return err
		}
		for id := uint32(1); id <= count; id++ {
			r, found, err := s.Rewards.Get(ctx, user, id)
			if err != nil {
				return err
			}
			if found && r.Claimable() {
				rewards = append(rewards, domain.CampaignReward{
					CampaignID: id,
					Amount:     new(big.Int).Set(r.UnclaimedAmount),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

// settle zeroes the record, persists it and pays the amount from custody.
// The transfer comes last so that its failure aborts the enclosing unit.
func (l *Ledger) settle(ctx context.Context, s *store.Stores, c *domain.Campaign, r *domain.UserReward) (*big.Int, error) {
	amount := r.Settle()
	if err := s.Rewards.Put(ctx, r); err != nil {
		return nil, err
	}
	if err := l.transfer(ctx, s, c.RewardToken, l.custody, r.User, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

func (l *Ledger) claimed(ctx context.Context, campaignID uint32, user, token domain.Address, amount *big.Int) {
	l.logger.Info("rewards claimed",
		slog.Any("campaign_id", campaignID),
		slog.String("user", user.String()),
		slog.String("amount", amount.String()))
	l.publish(ctx, domain.RewardsClaimedEvent(campaignID, user, token, amount))
}
