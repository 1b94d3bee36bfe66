package usecase

import (
	"context"
	"log/slog"
	"math/big"

	"reward-ledger/internal/adapter/store"
	"reward-ledger/internal/core/domain"
)

// Initialize records admin as the ledger administrator and resets the
// campaign counter. It succeeds once per ledger; the caller must be admin.
func (l *Ledger) Initialize(ctx context.Context, admin domain.Address) error {
	err := l.update(ctx, func(s *store.Stores) error {
		exists, err := s.Instance.HasAdmin(ctx)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyInitialized
		}
		if err := l.gate.Require(ctx, admin); err != nil {
			return err
		}
		if err := s.Instance.SetAdmin(ctx, admin); err != nil {
			return err
		}
		return s.Instance.SetCampaignCount(ctx, 0)
	})
	if err != nil {
		l.rejected("initialize", err, slog.String("admin", admin.String()))
		return err
	}
	l.logger.Info("ledger initialized", slog.String("admin", admin.String()))
	return nil
}

// CreateCampaign registers a campaign for the (pool, asset) pair and pulls
// its full funding from the creator into custody. Ids start at 1 and are
// never reused.
func (l *Ledger) CreateCampaign(ctx context.Context, params domain.CampaignParams) (uint32, error) {
	var created *domain.Campaign
	err := l.update(ctx, func(s *store.Stores) error {
		if err := l.gate.Require(ctx, params.Creator); err != nil {
			return err
		}
		if err := params.Validate(); err != nil {
			return err
		}
		exists, err := s.PoolIndex.Has(ctx, params.Pool, params.Asset)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrCampaignAlreadyExists
		}
		count, err := s.Instance.CampaignCount(ctx)
		if err != nil {
			return err
		}
		c := domain.NewCampaign(count+1, params, l.now())
		if err := s.Campaigns.Put(ctx, c); err != nil {
			return err
		}
		if err := s.PoolIndex.Put(ctx, c.PoolAddress, c.Asset, c.ID); err != nil {
			return err
		}
		if err := s.Instance.SetCampaignCount(ctx, c.ID); err != nil {
			return err
		}
		if err := l.transfer(ctx, s, c.RewardToken, c.Creator, l.custody, c.TotalFundedAmount); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		l.rejected("create_campaign", err,
			slog.String("pool", params.Pool.String()),
			slog.String("asset", params.Asset.String()),
			slog.String("creator", params.Creator.String()))
		return 0, err
	}
	l.logger.Info("campaign created",
		slog.Any("campaign_id", created.ID),
		slog.String("pool", created.PoolAddress.String()),
		slog.String("asset", created.Asset.String()),
		slog.String("total", created.TotalFundedAmount.String()))
	l.publish(ctx, domain.CampaignCreatedEvent(created))
	return created.ID, nil
}

// UpdateCampaignStatus sets the activation flag. Admin or the campaign
// creator may call it. The flag does not affect time-based expiry.
func (l *Ledger) UpdateCampaignStatus(ctx context.Context, campaignID uint32, active bool) error {
	var by domain.Address
	err := l.update(ctx, func(s *store.Stores) error {
		c, found, err := s.Campaigns.Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrCampaignNotFound
		}
		admin, _, err := s.Instance.Admin(ctx)
		if err != nil {
			return err
		}
		if err := l.gate.RequireAny(ctx, admin, c.Creator); err != nil {
			return err
		}
		by, _ = domain.CallerFrom(ctx)
		c.IsActive = active
		return s.Campaigns.Put(ctx, c)
	})
	if err != nil {
		l.rejected("update_campaign_status", err, slog.Any("campaign_id", campaignID))
		return err
	}
	l.logger.Info("campaign status updated", slog.Any("campaign_id", campaignID), slog.Bool("is_active", active))
	l.publish(ctx, domain.CampaignStatusEvent(campaignID, active, by))
	return nil
}

// ShutdownCampaign returns the remaining funds of an expired campaign to
// its creator and zeroes them. It is the only way to recover unspent
// funds, rounding dust included.
func (l *Ledger) ShutdownCampaign(ctx context.Context, campaignID uint32) (*big.Int, error) {
	var (
		closed   *domain.Campaign
		returned *big.Int
	)
	err := l.update(ctx, func(s *store.Stores) error {
		c, found, err := s.Campaigns.Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrCampaignNotFound
		}
		if err := l.gate.Require(ctx, c.Creator); err != nil {
			return err
		}
		if !c.Ended(l.now()) {
			return domain.ErrCampaignNotActive
		}
		if c.RemainingFunds.Sign() <= 0 {
			return domain.ErrInsufficientFunds
		}
		returned = c.Shutdown()
		if err := s.Campaigns.Put(ctx, c); err != nil {
			return err
		}
		if err := l.transfer(ctx, s, c.RewardToken, l.custody, c.Creator, returned); err != nil {
			return err
		}
		closed = c
		return nil
	})
	if err != nil {
		l.rejected("shutdown_campaign", err, slog.Any("campaign_id", campaignID))
		return nil, err
	}
	l.logger.Info("campaign shut down",
		slog.Any("campaign_id", campaignID),
		slog.String("returned", returned.String()))
	l.publish(ctx, domain.CampaignShutdownEvent(closed, returned))
	return returned, nil
}

// GetCampaign returns the campaign or nil when it does not exist.
func (l *Ledger) GetCampaign(ctx context.Context, campaignID uint32) (*domain.Campaign, error) {
	var c *domain.Campaign
	err := l.view(ctx, func(s *store.Stores) error {
		var err error
		c, _, err = s.Campaigns.Get(ctx, campaignID)
		return err
	})
	return c, err
}

func (l *Ledger) GetCampaignByPoolAsset(ctx context.Context, pool, asset domain.Address) (id uint32, found bool, err error) {
	err = l.view(ctx, func(s *store.Stores) error {
		id, found, err = s.PoolIndex.Get(ctx, pool, asset)
		return err
	})
	return id, found, err
}

// GetActiveCampaigns scans ids 1..count and returns the campaigns whose
// activation flag is set, expired or not.
func (l *Ledger) GetActiveCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns := make([]domain.Campaign, 0)
	err := l.view(ctx, func(s *store.Stores) error {
		count, err := s.Instance.CampaignCount(ctx)
		if err != nil {
			return err
		}
		for id := uint32(1); id <= count; id++ {
			c, found, err := s.Campaigns.Get(ctx, id)
			if err != nil {
				return err
			}
			if found && c.IsActive {
				campaigns = append(campaigns, *c)
			}
		}
		return nil
	})
	return campaigns, err
}

func (l *Ledger) GetCampaignCount(ctx context.Context) (count uint32, err error) {
	err = l.view(ctx, func(s *store.Stores) error {
		count, err = s.Instance.CampaignCount(ctx)
		return err
	})
	return count, err
}

// GetAdmin returns domain.ErrNotInitialized before Initialize.
func (l *Ledger) GetAdmin(ctx context.Context) (domain.Address, error) {
	var (
		admin domain.Address
		found bool
	)
	err := l.view(ctx, func(s *store.Stores) error {
		var err error
		admin, found, err = s.Instance.Admin(ctx)
		return err
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrNotInitialized
	}
	return admin, nil
}
