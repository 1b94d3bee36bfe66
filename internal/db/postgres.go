package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"reward-ledger/internal/config/configs"
)

// NewPostgresPool creates a pgxpool.Pool for cfg.Addr and verifies it by
// pinging the database with a 5 second timeout. MaxConns is applied when
// positive. The caller must close the returned pool.
func NewPostgresPool(ctx context.Context, cfg configs.Postgres) (*pgxpool.Pool, error) {
	poolConf, err := pgxpool.ParseConfig(cfg.Addr.String())
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConf.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConf)
	if err != nil {
		return nil, err
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
