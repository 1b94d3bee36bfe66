package domain

import "math/big"

// UserReward is one participant's accrual state within one campaign.
type UserReward struct {
	User            Address  `json:"user"`
	CampaignID      uint32   `json:"campaign_id"`
	UnclaimedAmount *big.Int `json:"unclaimed_amount"`
	TotalClaimed    *big.Int `json:"total_claimed"`
	LastUpdate      uint64   `json:"last_update"`
}

// NewUserReward returns the zero record created on a user's first accrual.
func NewUserReward(user Address, campaignID uint32, now uint64) *UserReward {
	return &UserReward{
		User:            user,
		CampaignID:      campaignID,
		UnclaimedAmount: big.NewInt(0),
		TotalClaimed:    big.NewInt(0),
		LastUpdate:      now,
	}
}

// Accrue adds amount to the unclaimed balance.
func (r *UserReward) Accrue(amount *big.Int, now uint64) {
	r.UnclaimedAmount = new(big.Int).Add(r.UnclaimedAmount, amount)
	r.LastUpdate = now
}

// Claimable reports whether there is a strictly positive unclaimed balance.
func (r *UserReward) Claimable() bool {
	return r != nil && r.UnclaimedAmount != nil && r.UnclaimedAmount.Sign() > 0
}

// Settle moves the unclaimed balance into TotalClaimed and returns the
// amount moved.
func (r *UserReward) Settle() *big.Int {
	amount := cloneInt(r.UnclaimedAmount)
	r.TotalClaimed = new(big.Int).Add(cloneInt(r.TotalClaimed), amount)
	r.UnclaimedAmount = big.NewInt(0)
	return amount
}

// Clone returns a deep copy of the record.
func (r *UserReward) Clone() *UserReward {
	if r == nil {
		return nil
	}
	clone := *r
	clone.UnclaimedAmount = cloneInt(r.UnclaimedAmount)
	clone.TotalClaimed = cloneInt(r.TotalClaimed)
	return &clone
}

// CampaignReward pairs a campaign with an amount, as returned by the
// multi-campaign claim and lookup operations.
type CampaignReward struct {
	CampaignID uint32   `json:"campaign_id"`
	Amount     *big.Int `json:"amount"`
}
