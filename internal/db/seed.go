package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"reward-ledger/internal/config/configs"
	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// Minter is the part of the custody bank the seed needs.
type Minter interface {
	Mint(ctx context.Context, token, holder domain.Address, amount *big.Int) error
	Balance(ctx context.Context, token, holder domain.Address) (*big.Int, error)
}

// SeedBalance is one token:holder:amount entry of LEDGER_SEED_BALANCES.
type SeedBalance struct {
	Token  domain.Address
	Holder domain.Address
	Amount *big.Int
}

// ParseSeedBalance parses "token:holder:amount".
func ParseSeedBalance(s string) (SeedBalance, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return SeedBalance{}, fmt.Errorf("seed balance %q: want token:holder:amount", s)
	}
	amount, ok := new(big.Int).SetString(parts[2], 10)
	if !ok || amount.Sign() <= 0 {
		return SeedBalance{}, fmt.Errorf("seed balance %q: invalid amount", s)
	}
	b := SeedBalance{
		Token:  domain.ParseAddress(parts[0]),
		Holder: domain.ParseAddress(parts[1]),
		Amount: amount,
	}
	if b.Token.IsZero() || b.Holder.IsZero() {
		return SeedBalance{}, fmt.Errorf("seed balance %q: empty token or holder", s)
	}
	return b, nil
}

// Seed prepares a devnet ledger. Each seed balance is topped up to its
// amount, so restarting against a persistent store does not mint twice.
// When cfg.Admin is set and the ledger has no admin yet, it is initialized
// on the admin's behalf.
func Seed(ctx context.Context, bank Minter, ledger port.LedgerUseCase, cfg configs.Ledger, logger *slog.Logger) error {
	for _, raw := range cfg.SeedBalances {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		b, err := ParseSeedBalance(raw)
		if err != nil {
			return err
		}
		current, err := bank.Balance(ctx, b.Token, b.Holder)
		if err != nil {
			return err
		}
		missing := new(big.Int).Sub(b.Amount, current)
		if missing.Sign() <= 0 {
			continue
		}
		if err := bank.Mint(ctx, b.Token, b.Holder, missing); err != nil {
			return err
		}
		logger.Info("seeded balance",
			slog.String("token", b.Token.String()),
			slog.String("holder", b.Holder.String()),
			slog.String("amount", b.Amount.String()))
	}

	admin := domain.ParseAddress(cfg.Admin)
	if admin.IsZero() {
		return nil
	}
	_, err := ledger.GetAdmin(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, domain.ErrNotInitialized):
		return err
	}
	return ledger.Initialize(domain.WithCaller(ctx, admin), admin)
}
