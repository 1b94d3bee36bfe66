package domain

import "math/big"

// No-op reasons of a distribution round that succeeded without writing.
const (
	NoOpEmptyPool      = "empty_pool"
	NoOpNoParticipants = "no_participants"
)

// ProRataShare returns floor(balance * daily / totalDeposits) computed
// exactly. The caller guarantees totalDeposits > 0.
func ProRataShare(balance, daily, totalDeposits *big.Int) *big.Int {
	share := new(big.Int).Mul(balance, daily)
	return share.Div(share, totalDeposits)
}

// Allocation is the reward accrued to one participant in a round.
type Allocation struct {
	User    Address  `json:"user"`
	Balance *big.Int `json:"balance"`
	Reward  *big.Int `json:"reward"`
}

// DistributionReport summarises one distribution round. Dust is the part of
// the daily budget left in the campaign by floor rounding; it is zero for
// no-op rounds.
type DistributionReport struct {
	CampaignID       uint32       `json:"campaign_id"`
	Allocations      []Allocation `json:"allocations"`
	Skipped          int          `json:"skipped"`
	TotalDistributed *big.Int     `json:"total_distributed"`
	Dust             *big.Int     `json:"dust"`
	NoOp             string       `json:"no_op,omitempty"`
}

// NoOpReport returns the report of a round that changed nothing.
func NoOpReport(campaignID uint32, reason string) DistributionReport {
	return DistributionReport{
		CampaignID:       campaignID,
		TotalDistributed: big.NewInt(0),
		Dust:             big.NewInt(0),
		NoOp:             reason,
	}
}
