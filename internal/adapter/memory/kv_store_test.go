package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reward-ledger/internal/adapter/kvtest"
	"reward-ledger/internal/core/port"
)

func TestKVStore(t *testing.T) {
	kvtest.Run(t, NewKVStore())
}

func TestViewIsReadOnly(t *testing.T) {
	s := NewKVStore()
	err := s.View(context.Background(), func(r port.KVReader) error {
		return r.(port.KVTx).Set(context.Background(), []byte("k"), []byte("v"))
	})
	require.ErrorIs(t, err, port.ErrReadOnly)
	assert.Zero(t, s.Len())
}

func TestUpdateRefusesCancelledContext(t *testing.T) {
	s := NewKVStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.Update(ctx, func(tx port.KVTx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.Zero(t, s.Len())
}
