package store

import (
	"context"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// PoolAssetIndexStore maps a (pool, asset) pair to its campaign id. Entries
// are written once and never change.
type PoolAssetIndexStore struct {
	kv port.KVTx
}

func (s *PoolAssetIndexStore) Get(ctx context.Context, pool, asset domain.Address) (uint32, bool, error) {
	var id uint32
	found, err := getJSON(ctx, s.kv, poolAssetKey(pool, asset), &id)
	if err != nil || !found {
		return 0, false, err
	}
	return id, true, nil
}

func (s *PoolAssetIndexStore) Has(ctx context.Context, pool, asset domain.Address) (bool, error) {
	return s.kv.Has(ctx, poolAssetKey(pool, asset))
}

func (s *PoolAssetIndexStore) Put(ctx context.Context, pool, asset domain.Address, id uint32) error {
	return putJSON(ctx, s.kv, poolAssetKey(pool, asset), id)
}
