package domain

import (
	"math/big"
	"strconv"
	"time"
)

// Ledger event types, published after the owning operation has committed.
const (
	EventCampaignCreated       = "campaign.created"
	EventCampaignStatusUpdated = "campaign.status_updated"
	EventCampaignShutdown      = "campaign.shutdown"
	EventRewardsDistributed    = "rewards.distributed"
	EventRewardsClaimed        = "rewards.claimed"
)

// Event is a record of a committed ledger mutation.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	CampaignID uint32            `json:"campaign_id"`
	Attributes map[string]string `json:"attributes"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Attr returns the named attribute or "".
func (e Event) Attr(key string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// CampaignCreatedEvent describes a newly funded campaign.
func CampaignCreatedEvent(c *Campaign) Event {
	return Event{
		Type:       EventCampaignCreated,
		CampaignID: c.ID,
		Attributes: map[string]string{
			"pool":         c.PoolAddress.String(),
			"asset":        c.Asset.String(),
			"reward_token": c.RewardToken.String(),
			"creator":      c.Creator.String(),
			"daily":        formatAmount(c.DailyRewardAmount),
			"total":        formatAmount(c.TotalFundedAmount),
			"end_time":     strconv.FormatUint(c.EndTime, 10),
		},
	}
}

// CampaignStatusEvent describes an activation toggle.
func CampaignStatusEvent(campaignID uint32, active bool, by Address) Event {
	return Event{
		Type:       EventCampaignStatusUpdated,
		CampaignID: campaignID,
		Attributes: map[string]string{
			"is_active": strconv.FormatBool(active),
			"by":        by.String(),
		},
	}
}

// CampaignShutdownEvent describes the return of unspent funds to the creator.
func CampaignShutdownEvent(c *Campaign, returned *big.Int) Event {
	return Event{
		Type:       EventCampaignShutdown,
		CampaignID: c.ID,
		Attributes: map[string]string{
			"creator":      c.Creator.String(),
			"reward_token": c.RewardToken.String(),
			"amount":       formatAmount(returned),
		},
	}
}

// RewardsDistributedEvent describes a committed distribution round.
func RewardsDistributedEvent(report DistributionReport) Event {
	return Event{
		Type:       EventRewardsDistributed,
		CampaignID: report.CampaignID,
		Attributes: map[string]string{
			"total":      formatAmount(report.TotalDistributed),
			"dust":       formatAmount(report.Dust),
			"recipients": strconv.Itoa(len(report.Allocations)),
			"skipped":    strconv.Itoa(report.Skipped),
		},
	}
}

// RewardsClaimedEvent describes a payout of accrued rewards.
func RewardsClaimedEvent(campaignID uint32, user, token Address, amount *big.Int) Event {
	return Event{
		Type:       EventRewardsClaimed,
		CampaignID: campaignID,
		Attributes: map[string]string{
			"user":         user.String(),
			"reward_token": token.String(),
			"amount":       formatAmount(amount),
		},
	}
}
