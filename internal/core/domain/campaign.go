package domain

import "math/big"

// SecondsPerDay converts a campaign duration in days into its time window.
const SecondsPerDay = 24 * 60 * 60

// Campaign is one funded incentive program for a single (pool, asset) pair.
// Amounts are integer base units of the reward token.
type Campaign struct {
	ID                uint32   `json:"campaign_id"`
	PoolAddress       Address  `json:"pool_address"`
	Asset             Address  `json:"asset"`
	RewardToken       Address  `json:"reward_token"`
	DailyRewardAmount *big.Int `json:"daily_reward_amount"`
	TotalFundedAmount *big.Int `json:"total_funded_amount"`
	RemainingFunds    *big.Int `json:"remaining_funds"`
	// ReturnedFunds is what shutdown sent back to the creator. Funded
	// equals remaining plus returned plus everything allocated to users.
	ReturnedFunds     *big.Int `json:"returned_funds"`
	DurationDays      uint32   `json:"duration_days"`
	StartTime         uint64   `json:"start_time"`
	EndTime           uint64   `json:"end_time"`
	IsActive          bool     `json:"is_active"`
	Creator           Address  `json:"creator"`
}

// CampaignParams holds the caller supplied attributes of a new campaign.
type CampaignParams struct {
	Pool              Address
	Asset             Address
	RewardToken       Address
	DailyRewardAmount *big.Int
	DurationDays      uint32
	Creator           Address
}

// Validate checks the amount and duration of a new campaign.
func (p CampaignParams) Validate() error {
	if p.DailyRewardAmount == nil || p.DailyRewardAmount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if p.DurationDays == 0 {
		return ErrInvalidDuration
	}
	return nil
}

// TotalFunding is the amount pulled from the creator at creation:
// daily reward amount times duration in days.
func (p CampaignParams) TotalFunding() *big.Int {
	return new(big.Int).Mul(p.DailyRewardAmount, new(big.Int).SetUint64(uint64(p.DurationDays)))
}

// NewCampaign builds an active campaign starting at now with its full
// funding still remaining.
func NewCampaign(id uint32, p CampaignParams, now uint64) *Campaign {
	total := p.TotalFunding()
	return &Campaign{
		ID:                id,
		PoolAddress:       p.Pool,
		Asset:             p.Asset,
		RewardToken:       p.RewardToken,
		DailyRewardAmount: new(big.Int).Set(p.DailyRewardAmount),
		TotalFundedAmount: total,
		RemainingFunds:    new(big.Int).Set(total),
		ReturnedFunds:     big.NewInt(0),
		DurationDays:      p.DurationDays,
		StartTime:         now,
		EndTime:           now + uint64(p.DurationDays)*SecondsPerDay,
		IsActive:          true,
		Creator:           p.Creator,
	}
}

// Ended reports whether the campaign window has passed at now. The window is
// inclusive of EndTime and independent of IsActive.
func (c *Campaign) Ended(now uint64) bool {
	return now > c.EndTime
}

// CanFundRound reports whether a full daily budget is still available.
func (c *Campaign) CanFundRound() bool {
	return c.RemainingFunds.Cmp(c.DailyRewardAmount) >= 0
}

// Distributed returns the funds already allocated to participants.
func (c *Campaign) Distributed() *big.Int {
	d := new(big.Int).Sub(c.TotalFundedAmount, c.RemainingFunds)
	if c.ReturnedFunds != nil {
		d.Sub(d, c.ReturnedFunds)
	}
	return d
}

// Shutdown moves the remaining funds into ReturnedFunds and returns the
// amount moved.
func (c *Campaign) Shutdown() *big.Int {
	returned := cloneInt(c.RemainingFunds)
	c.ReturnedFunds = new(big.Int).Add(cloneInt(c.ReturnedFunds), returned)
	c.RemainingFunds = big.NewInt(0)
	return returned
}

// Clone returns a deep copy of the campaign.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	clone := *c
	clone.DailyRewardAmount = cloneInt(c.DailyRewardAmount)
	clone.TotalFundedAmount = cloneInt(c.TotalFundedAmount)
	clone.RemainingFunds = cloneInt(c.RemainingFunds)
	clone.ReturnedFunds = cloneInt(c.ReturnedFunds)
	return &clone
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
