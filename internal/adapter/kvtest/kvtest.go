// Package kvtest holds the behaviour every port.KVStore implementation must
// show. Adapter tests run it against their own store.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reward-ledger/internal/core/port"
)

// Run exercises store. The store must start empty.
func Run(t *testing.T, store port.KVStore) {
	t.Helper()
	ctx := context.Background()
	key, other := []byte("rewards/a"), []byte("rewards/b")

	t.Run("commit", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, func(tx port.KVTx) error {
			require.NoError(t, tx.Set(ctx, key, []byte("one")))
			v, found, err := tx.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "one", string(v))
			return nil
		}))
		require.NoError(t, store.View(ctx, func(r port.KVReader) error {
			v, found, err := r.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "one", string(v))
			has, err := r.Has(ctx, other)
			require.NoError(t, err)
			assert.False(t, has)
			return nil
		}))
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Update(ctx, func(tx port.KVTx) error {
			require.NoError(t, tx.Set(ctx, key, []byte("two")))
			require.NoError(t, tx.Set(ctx, other, []byte("x")))
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.NoError(t, store.View(ctx, func(r port.KVReader) error {
			v, _, err := r.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "one", string(v))
			has, err := r.Has(ctx, other)
			require.NoError(t, err)
			assert.False(t, has)
			return nil
		}))
	})

	// A successful fn commits even when the caller's context is cancelled
	// before Update returns.
	t.Run("cancelled after fn", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		late := []byte("rewards/late")
		require.NoError(t, store.Update(cctx, func(tx port.KVTx) error {
			if err := tx.Set(cctx, late, []byte("kept")); err != nil {
				return err
			}
			cancel()
			return nil
		}))
		require.NoError(t, store.View(ctx, func(r port.KVReader) error {
			v, found, err := r.Get(ctx, late)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "kept", string(v))
			return nil
		}))
	})

	t.Run("missing", func(t *testing.T) {
		require.NoError(t, store.View(ctx, func(r port.KVReader) error {
			v, found, err := r.Get(ctx, []byte("rewards/none"))
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, v)
			return nil
		}))
	})
}
