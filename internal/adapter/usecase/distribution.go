package usecase

import (
	"context"
	"log/slog"
	"math/big"

	"reward-ledger/internal/adapter/store"
	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// DistributeRewards credits one daily budget of a campaign to the listed
// participants pro rata to their pool balances. Only the admin may call it.
// No funds move: shares are accrued and paid out on claim.
func (l *Ledger) DistributeRewards(ctx context.Context, req port.DistributionRequest) (domain.DistributionReport, error) {
	var report domain.DistributionReport
	err := l.update(ctx, func(s *store.Stores) error {
		admin, found, err := s.Instance.Admin(ctx)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotAuthorized
		}
		if err := l.gate.Require(ctx, admin); err != nil {
			return err
		}

		c, found, err := s.Campaigns.Get(ctx, req.CampaignID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrCampaignNotFound
		}
		if !c.IsActive {
			return domain.ErrCampaignNotActive
		}
		now := l.now()
		if c.Ended(now) {
			return domain.ErrCampaignEnded
		}

		if req.TotalPoolDeposits == nil || req.TotalPoolDeposits.Sign() <= 0 {
			report = domain.NoOpReport(c.ID, domain.NoOpEmptyPool)
			return nil
		}
		if len(req.Users) == 0 || len(req.Balances) == 0 || len(req.Users) != len(req.Balances) {
			report = domain.NoOpReport(c.ID, domain.NoOpNoParticipants)
			return nil
		}
		if !c.CanFundRound() {
			return domain.ErrInsufficientFunds
		}

		report, err = l.allocate(ctx, s, c, req, now)
		if err != nil {
			return err
		}
		c.RemainingFunds = new(big.Int).Sub(c.RemainingFunds, report.TotalDistributed)
		return s.Campaigns.Put(ctx, c)
	})
	if err != nil {
		l.rejected("distribute_rewards", err, slog.Any("campaign_id", req.CampaignID))
		return domain.DistributionReport{}, err
	}
	if report.NoOp != "" {
		l.logger.Info("distribution skipped",
			slog.Any("campaign_id", req.CampaignID),
			slog.String("reason", report.NoOp))
		return report, nil
	}
	l.logger.Info("rewards distributed",
		slog.Any("campaign_id", report.CampaignID),
		slog.Int("recipients", len(report.Allocations)),
		slog.Int("skipped", report.Skipped),
		slog.String("total", report.TotalDistributed.String()),
		slog.String("dust", report.Dust.String()))
	l.publish(ctx, domain.RewardsDistributedEvent(report))
	return report, nil
}

// allocate accrues each participant's share. Users whose balance or share
// is not positive are skipped. Duplicated users accrue once per entry.
func (l *Ledger) allocate(ctx context.Context, s *store.Stores, c *domain.Campaign, req port.DistributionRequest, now uint64) (domain.DistributionReport, error) {
	report := domain.DistributionReport{
		CampaignID:       c.ID,
		Allocations:      make([]domain.Allocation, 0, len(req.Users)),
		TotalDistributed: big.NewInt(0),
	}
	for i, user := range req.Users {
		balance := req.Balances[i]
		if balance == nil || balance.Sign() <= 0 {
			report.Skipped++
			l.logger.Debug("skip participant", slog.String("user", user.String()), slog.String("reason", "balance"))
			continue
		}
		share := domain.ProRataShare(balance, c.DailyRewardAmount, req.TotalPoolDeposits)
		if share.Sign() <= 0 {
			report.Skipped++
			l.logger.Debug("skip participant", slog.String("user", user.String()), slog.String("reason", "share"))
			continue
		}

		r, err := s.Rewards.GetOrNew(ctx, user, c.ID, now)
		if err != nil {
			return report, err
		}
		r.Accrue(share, now)
		if err := s.Rewards.Put(ctx, r); err != nil {
			return report, err
		}
		report.Allocations = append(report.Allocations, domain.Allocation{
			User:    user,
			Balance: new(big.Int).Set(balance),
			Reward:  share,
		})
		report.TotalDistributed.Add(report.TotalDistributed, share)
	}
	report.Dust = new(big.Int).Sub(c.DailyRewardAmount, report.TotalDistributed)
	return report, nil
}
