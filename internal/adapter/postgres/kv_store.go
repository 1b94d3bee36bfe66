package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reward-ledger/internal/core/port"
)

// LedgerTable is created by the embedded migrations. The ledger records and
// the custody bank balances share it so a payout commits with the ledger
// writes that caused it.
const LedgerTable = "kv_entries"

// KVStore implements port.KVStore on a (key, value) table using pgxpool for
// PostgreSQL.
type KVStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewKVStore returns a store backed by table. The pool is owned by the
// caller.
func NewKVStore(pool *pgxpool.Pool, table string) *KVStore {
	return &KVStore{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

// View runs fn in a read-only transaction.
func (s *KVStore) View(ctx context.Context, fn func(port.KVReader) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	return fn(&txn{tx: tx, table: s.table})
}

// Update runs fn in a serializable transaction and commits when fn succeeds.
// The commit is not bound to ctx: once fn has succeeded a cancelled request
// no longer aborts it.
func (s *KVStore) Update(ctx context.Context, fn func(port.KVTx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(&txn{tx: tx, table: s.table}); err != nil {
		return err
	}
	if err = tx.Commit(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is closed by its owner.
func (s *KVStore) Close() error { return nil }

type txn struct {
	tx    pgx.Tx
	table string
}

func (t *txn) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRow(ctx, `SELECT value FROM `+t.table+` WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (t *txn) Has(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+t.table+` WHERE key = $1)`, key).Scan(&exists)
	return exists, err
}

func (t *txn) Set(ctx context.Context, key, value []byte) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO `+t.table+` (key, value, updated_at) VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, key, value)
	return err
}
