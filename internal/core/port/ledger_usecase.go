package port

import (
	"context"
	"math/big"

	"reward-ledger/internal/core/domain"
)

// LedgerUseCase defines the business operations exposed by the reward
// ledger. This interface represents the primary port into the application
// domain. The authenticated caller travels in ctx (see domain.WithCaller).
type LedgerUseCase interface {
	// Initialize sets the admin once. The caller must be admin.
	Initialize(ctx context.Context, admin domain.Address) error

	// CreateCampaign pulls daily*days from the creator into custody and
	// registers a campaign for the (pool, asset) pair. It returns the new
	// campaign id.
	CreateCampaign(ctx context.Context, params domain.CampaignParams) (uint32, error)

	// DistributeRewards accrues each participant's pro-rata share of the
	// daily budget. Only the admin may call it.
	DistributeRewards(ctx context.Context, req DistributionRequest) (domain.DistributionReport, error)

	// ClaimRewards pays out the caller's unclaimed balance in one campaign.
	ClaimRewards(ctx context.Context, user domain.Address, campaignID uint32) (*big.Int, error)

	// ClaimAllRewards pays out every positive unclaimed balance of user,
	// ascending by campaign id. On a failed payout the claims committed so
	// far are returned along with the error.
	ClaimAllRewards(ctx context.Context, user domain.Address) ([]domain.CampaignReward, error)

	// UpdateCampaignStatus toggles the activation flag. Admin or creator.
	UpdateCampaignStatus(ctx context.Context, campaignID uint32, active bool) error

	// ShutdownCampaign returns the remaining funds of an expired campaign to
	// its creator.
	ShutdownCampaign(ctx context.Context, campaignID uint32) (*big.Int, error)

	GetUserRewards(ctx context.Context, user domain.Address, campaignID uint32) (*big.Int, error)
	GetUserAllRewards(ctx context.Context, user domain.Address) ([]domain.CampaignReward, error)
	// GetCampaign returns nil when the campaign does not exist.
	GetCampaign(ctx context.Context, campaignID uint32) (*domain.Campaign, error)
	GetCampaignByPoolAsset(ctx context.Context, pool, asset domain.Address) (uint32, bool, error)
	GetActiveCampaigns(ctx context.Context) ([]domain.Campaign, error)
	GetCampaignCount(ctx context.Context) (uint32, error)
	GetAdmin(ctx context.Context) (domain.Address, error)
}

// DistributionRequest carries one balance snapshot reported by the oracle.
// Users and Balances are parallel arrays paired by index.
type DistributionRequest struct {
	CampaignID        uint32
	Users             []domain.Address
	Balances          []*big.Int
	TotalPoolDeposits *big.Int
}
