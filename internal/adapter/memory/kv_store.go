package memory

import (
	"context"
	"sync"

	"reward-ledger/internal/core/port"
)

// KVStore is an in-memory port.KVStore. Updates are serialized by a single
// lock and buffered until fn returns nil. Once fn has succeeded the writes
// are applied even if ctx is cancelled meanwhile.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKVStore returns an empty store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

func (s *KVStore) View(ctx context.Context, fn func(port.KVReader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&tx{base: s.data})
}

func (s *KVStore) Update(ctx context.Context, fn func(port.KVTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &tx{base: s.data, staged: make(map[string][]byte)}
	if err := fn(t); err != nil {
		return err
	}
	for k, v := range t.staged {
		s.data[k] = v
	}
	return nil
}

func (s *KVStore) Close() error { return nil }

// Len returns the number of stored keys.
func (s *KVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

type tx struct {
	base   map[string][]byte
	staged map[string][]byte
}

func (t *tx) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if v, ok := t.staged[string(key)]; ok {
		return clone(v), true, nil
	}
	v, ok := t.base[string(key)]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (t *tx) Has(ctx context.Context, key []byte) (bool, error) {
	_, found, err := t.Get(ctx, key)
	return found, err
}

func (t *tx) Set(_ context.Context, key, value []byte) error {
	if t.staged == nil {
		return port.ErrReadOnly
	}
	t.staged[string(key)] = clone(value)
	return nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
