// Package oracle contains the off-chain side of distribution: balance
// snapshots reported by the pool and a client for the ledger HTTP API.
package oracle

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Snapshot is one pool balance snapshot. Balances are decimal token
// amounts; Decimals converts them to base units.
type Snapshot struct {
	CampaignID        uint32        `yaml:"campaign_id"`
	Decimals          int32         `yaml:"decimals"`
	TotalPoolDeposits string        `yaml:"total_pool_deposits,omitempty"`
	Participants      []Participant `yaml:"participants"`
}

type Participant struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

// DistributionPayload is the request body of a distribution round.
type DistributionPayload struct {
	Users             []string `json:"user_addresses"`
	Balances          []string `json:"user_balances"`
	TotalPoolDeposits string   `json:"total_pool_deposits"`
}

func LoadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return ParseSnapshot(f)
}

func ParseSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.CampaignID == 0 {
		return Snapshot{}, errors.New("snapshot: campaign_id is required")
	}
	if s.Decimals < 0 {
		return Snapshot{}, errors.New("snapshot: decimals must not be negative")
	}
	return s, nil
}

// Payload converts the snapshot to base units. When TotalPoolDeposits is
// empty it is the sum of the participant balances.
func (s Snapshot) Payload() (DistributionPayload, error) {
	p := DistributionPayload{
		Users:    make([]string, 0, len(s.Participants)),
		Balances: make([]string, 0, len(s.Participants)),
	}
	sum := new(big.Int)
	for _, part := range s.Participants {
		units, err := ToBaseUnits(part.Balance, s.Decimals)
		if err != nil {
			return DistributionPayload{}, fmt.Errorf("participant %s: %w", part.Address, err)
		}
		p.Users = append(p.Users, part.Address)
		p.Balances = append(p.Balances, units.String())
		sum.Add(sum, units)
	}
	if s.TotalPoolDeposits == "" {
		p.TotalPoolDeposits = sum.String()
		return p, nil
	}
	total, err := ToBaseUnits(s.TotalPoolDeposits, s.Decimals)
	if err != nil {
		return DistributionPayload{}, fmt.Errorf("total_pool_deposits: %w", err)
	}
	p.TotalPoolDeposits = total.String()
	return p, nil
}

// ToBaseUnits converts a decimal amount such as "12.5" into integer base
// units with the given number of decimals. Amounts finer than one base unit
// are rejected.
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", amount, decimals)
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits formats base units as a decimal amount.
func FromBaseUnits(units *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(units, -decimals).String()
}
