// Package store provides typed repositories for the ledger records on top of
// the generic key-value port. Each repository owns its key construction and
// JSON encoding.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"reward-ledger/internal/core/port"
)

// Stores bundles the repositories bound to one transaction.
type Stores struct {
	Instance  *InstanceStore
	Campaigns *CampaignStore
	Rewards   *UserRewardStore
	PoolIndex *PoolAssetIndexStore

	tx port.KVTx
}

// New binds all repositories to tx.
func New(tx port.KVTx) *Stores {
	return &Stores{
		Instance:  &InstanceStore{kv: tx},
		Campaigns: &CampaignStore{kv: tx},
		Rewards:   &UserRewardStore{kv: tx},
		PoolIndex: &PoolAssetIndexStore{kv: tx},
		tx:        tx,
	}
}

// Tx returns the transaction the repositories are bound to.
func (s *Stores) Tx() port.KVTx {
	return s.tx
}

// NewReadOnly binds all repositories to a read-only view. Writes fail with
// port.ErrReadOnly.
func NewReadOnly(r port.KVReader) *Stores {
	return New(readOnly{r})
}

type readOnly struct {
	port.KVReader
}

func (readOnly) Set(context.Context, []byte, []byte) error {
	return port.ErrReadOnly
}

func getJSON(ctx context.Context, kv port.KVReader, key []byte, dst any) (bool, error) {
	raw, found, err := kv.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func putJSON(ctx context.Context, kv port.KVTx, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}
