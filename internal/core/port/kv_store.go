package port

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by writes attempted inside KVStore.View.
var ErrReadOnly = errors.New("kv: read-only transaction")

// KVReader is the read side of the persistent key-value store.
type KVReader interface {
	// Get returns the value stored at key. found is false when the key is
	// absent.
	Get(ctx context.Context, key []byte) (value []byte, found bool, err error)
	// Has reports whether key is present.
	Has(ctx context.Context, key []byte) (bool, error)
}

// KVTx is a read-write transaction. Writes are visible to later reads in
// the same transaction and to nobody else until it commits.
type KVTx interface {
	KVReader
	Set(ctx context.Context, key, value []byte) error
}

// KVStore is the outbound persistence port of the ledger. It is an outbound
// port in hexagonal architecture. Implementations must serialize Update
// calls (or fail conflicting ones) so every operation observes a total
// order.
type KVStore interface {
	// View runs fn against a consistent read-only view of the store.
	View(ctx context.Context, fn func(KVReader) error) error
	// Update runs fn in a transaction. The transaction commits only when fn
	// returns nil; any error discards every write made by fn.
	Update(ctx context.Context, fn func(KVTx) error) error
	// Close releases the underlying resources.
	Close() error
}
