// Package bank implements a multi-token balance book used as the payment
// capability of the ledger when no external settlement layer is attached.
package bank

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

var (
	ErrInsufficientBalance = fmt.Errorf("bank: insufficient balance: %w", port.ErrPaymentRejected)
	ErrInvalidTransfer     = fmt.Errorf("bank: invalid transfer: %w", port.ErrPaymentRejected)
)

var (
	balancePrefix = []byte("bank/balance/")
	journalPrefix = []byte("bank/journal/")
	journalSeqKey = []byte("bank/journal-seq")
)

// Entry is one journal line. Mints have an empty From.
type Entry struct {
	ID     string         `json:"id"`
	Seq    uint64         `json:"seq"`
	Token  domain.Address `json:"token"`
	From   domain.Address `json:"from,omitempty"`
	To     domain.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
	At     time.Time      `json:"at"`
}

// Bank keeps balances per (token, holder) in a KV store under the "bank/"
// prefix. It is meant to share the ledger's store: the ledger moves funds
// with TransferTx inside its own transaction. Transfer and Mint open a
// transaction of their own and must not be called from inside an Update on
// the same store.
type Bank struct {
	kv     port.KVStore
	clock  clockwork.Clock
	logger *slog.Logger
}

func New(kv port.KVStore, clock clockwork.Clock, logger *slog.Logger) *Bank {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bank{kv: kv, clock: clock, logger: logger}
}

var _ port.TxPayment = (*Bank)(nil)

// Mint credits amount of token to holder out of thin air.
func (b *Bank) Mint(ctx context.Context, token, holder domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 || token.IsZero() || holder.IsZero() {
		return ErrInvalidTransfer
	}
	err := b.kv.Update(ctx, func(tx port.KVTx) error {
		if err := credit(ctx, tx, token, holder, amount); err != nil {
			return err
		}
		return b.record(ctx, tx, Entry{Token: token, To: holder, Amount: amount})
	})
	if err != nil {
		return fmt.Errorf("mint %s to %s: %w", token, holder, err)
	}
	b.logger.Info("minted", slog.String("token", token.String()), slog.String("holder", holder.String()), slog.String("amount", amount.String()))
	return nil
}

// Transfer moves amount of token between holders in a transaction of its
// own. It fails with ErrInsufficientBalance when from cannot cover the
// amount.
func (b *Bank) Transfer(ctx context.Context, token, from, to domain.Address, amount *big.Int) error {
	return b.kv.Update(ctx, func(tx port.KVTx) error {
		return b.TransferTx(ctx, tx, token, from, to, amount)
	})
}

// TransferTx stages the transfer in tx. It takes effect when tx commits.
func (b *Bank) TransferTx(ctx context.Context, tx port.KVTx, token, from, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 || token.IsZero() || from.IsZero() || to.IsZero() {
		return ErrInvalidTransfer
	}
	if err := b.move(ctx, tx, token, from, to, amount); err != nil {
		return fmt.Errorf("transfer %s %s -> %s: %w", token, from, to, err)
	}
	b.logger.Debug("transfer staged",
		slog.String("token", token.String()),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("amount", amount.String()))
	return nil
}

func (b *Bank) move(ctx context.Context, tx port.KVTx, token, from, to domain.Address, amount *big.Int) error {
	balance, err := balanceOf(ctx, tx, token, from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := putBalance(ctx, tx, token, from, balance.Sub(balance, amount)); err != nil {
		return err
	}
	if err := credit(ctx, tx, token, to, amount); err != nil {
		return err
	}
	return b.record(ctx, tx, Entry{Token: token, From: from, To: to, Amount: amount})
}

// Balance returns the holder's balance of token, zero when unknown.
func (b *Bank) Balance(ctx context.Context, token, holder domain.Address) (*big.Int, error) {
	var balance *big.Int
	err := b.kv.View(ctx, func(r port.KVReader) error {
		var err error
		balance, err = balanceOf(ctx, r, token, holder)
		return err
	})
	return balance, err
}

// Journal returns every entry in the order it was written.
func (b *Bank) Journal(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := b.kv.View(ctx, func(r port.KVReader) error {
		seq, err := journalSeq(ctx, r)
		if err != nil {
			return err
		}
		entries = make([]Entry, 0, seq)
		for n := uint64(1); n <= seq; n++ {
			raw, found, err := r.Get(ctx, journalKey(n))
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			var e Entry
			if err := json.Unmarshal(raw, &e); err != nil {
				return fmt.Errorf("decode journal entry %d: %w", n, err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

func (b *Bank) record(ctx context.Context, tx port.KVTx, e Entry) error {
	seq, err := journalSeq(ctx, tx)
	if err != nil {
		return err
	}
	seq++
	e.ID = uuid.NewString()
	e.Seq = seq
	e.Amount = new(big.Int).Set(e.Amount)
	e.At = b.clock.Now().UTC()
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := tx.Set(ctx, journalKey(seq), raw); err != nil {
		return err
	}
	return tx.Set(ctx, journalSeqKey, binary.BigEndian.AppendUint64(nil, seq))
}

func credit(ctx context.Context, tx port.KVTx, token, holder domain.Address, amount *big.Int) error {
	balance, err := balanceOf(ctx, tx, token, holder)
	if err != nil {
		return err
	}
	return putBalance(ctx, tx, token, holder, balance.Add(balance, amount))
}

func balanceOf(ctx context.Context, r port.KVReader, token, holder domain.Address) (*big.Int, error) {
	raw, found, err := r.Get(ctx, balanceKey(token, holder))
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	balance, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("corrupt balance of %s/%s", token, holder)
	}
	return balance, nil
}

func putBalance(ctx context.Context, tx port.KVTx, token, holder domain.Address, balance *big.Int) error {
	return tx.Set(ctx, balanceKey(token, holder), []byte(balance.String()))
}

func journalSeq(ctx context.Context, r port.KVReader) (uint64, error) {
	raw, found, err := r.Get(ctx, journalSeqKey)
	if err != nil || !found {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt journal sequence")
	}
	return binary.BigEndian.Uint64(raw), nil
}

func balanceKey(token, holder domain.Address) []byte {
	key := append([]byte(nil), balancePrefix...)
	key = binary.AppendUvarint(key, uint64(len(token)))
	key = append(key, token...)
	key = binary.AppendUvarint(key, uint64(len(holder)))
	return append(key, holder...)
}

func journalKey(seq uint64) []byte {
	key := append([]byte(nil), journalPrefix...)
	return binary.BigEndian.AppendUint64(key, seq)
}
