package leveldb

import (
	"context"
	"errors"
	"fmt"

	goleveldb "github.com/syndtr/goleveldb/leveldb"

	"reward-ledger/internal/core/port"
)

// KVStore is a persistent port.KVStore on LevelDB. Update runs inside a
// LevelDB transaction, which holds the write lock until commit or discard.
type KVStore struct {
	db *goleveldb.DB
}

// Open creates or opens a LevelDB database at path.
func Open(path string) (*KVStore, error) {
	db, err := goleveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &KVStore{db: db}, nil
}

func (s *KVStore) View(ctx context.Context, fn func(port.KVReader) error) error {
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return err
	}
	defer snap.Release()
	return fn(snapshotReader{snap: snap})
}

func (s *KVStore) Update(ctx context.Context, fn func(port.KVTx) error) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tr.Discard()
		}
	}()
	if err = fn(txn{tr: tr}); err != nil {
		return err
	}
	return tr.Commit()
}

func (s *KVStore) Close() error {
	return s.db.Close()
}

type snapshotReader struct {
	snap *goleveldb.Snapshot
}

func (r snapshotReader) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	v, err := r.snap.Get(key, nil)
	if errors.Is(err, goleveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r snapshotReader) Has(_ context.Context, key []byte) (bool, error) {
	return r.snap.Has(key, nil)
}

type txn struct {
	tr *goleveldb.Transaction
}

func (t txn) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	v, err := t.tr.Get(key, nil)
	if errors.Is(err, goleveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t txn) Has(_ context.Context, key []byte) (bool, error) {
	return t.tr.Has(key, nil)
}

func (t txn) Set(_ context.Context, key, value []byte) error {
	return t.tr.Put(key, value, nil)
}
