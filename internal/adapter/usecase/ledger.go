package usecase

import (
	"context"
	"io"
	"log/slog"
	"math/big"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"reward-ledger/internal/adapter/store"
	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// Ledger provides the reward accounting business logic. It orchestrates
// the typed stores, the payment capability and the authorization gate to
// implement the port.LedgerUseCase interface. Every mutating operation runs
// in a single KV transaction; payouts are requested last inside that
// transaction so a failed transfer discards the staged ledger writes. When
// the payment capability is a port.TxPayment the payout is written in the
// same transaction.
type Ledger struct {
	kv       port.KVStore
	payments port.Payment
	gate     Gate
	events   port.EventPublisher
	clock    clockwork.Clock
	logger   *slog.Logger

	// custody is the principal holding campaign funds between funding and
	// payout.
	custody domain.Address
}

// Option customises a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(c clockwork.Clock) Option {
	return func(l *Ledger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithEventPublisher sets the sink for committed ledger events.
func WithEventPublisher(p port.EventPublisher) Option {
	return func(l *Ledger) {
		if p != nil {
			l.events = p
		}
	}
}

// WithAuthenticator replaces the default context-based caller check.
func WithAuthenticator(a port.Authenticator) Option {
	return func(l *Ledger) {
		if a != nil {
			l.gate = Gate{auth: a}
		}
	}
}

// NewLedger creates a ledger over kv that moves funds through payments on
// behalf of the custody principal.
func NewLedger(kv port.KVStore, payments port.Payment, custody domain.Address, opts ...Option) *Ledger {
	l := &Ledger{
		kv:       kv,
		payments: payments,
		gate:     Gate{auth: ContextAuthenticator{}},
		events:   nopPublisher{},
		clock:    clockwork.NewRealClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		custody:  custody,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ port.LedgerUseCase = (*Ledger)(nil)

func (l *Ledger) now() uint64 {
	return uint64(l.clock.Now().Unix())
}

func (l *Ledger) update(ctx context.Context, fn func(s *store.Stores) error) error {
	return l.kv.Update(ctx, func(tx port.KVTx) error {
		return fn(store.New(tx))
	})
}

// transfer moves funds as part of the unit bound to s. A port.TxPayment
// stages the transfer in the same transaction; any other Payment is called
// directly, as the last step before commit.
func (l *Ledger) transfer(ctx context.Context, s *store.Stores, token, from, to domain.Address, amount *big.Int) error {
	if tp, ok := l.payments.(port.TxPayment); ok {
		return tp.TransferTx(ctx, s.Tx(), token, from, to, amount)
	}
	return l.payments.Transfer(ctx, token, from, to, amount)
}

func (l *Ledger) view(ctx context.Context, fn func(s *store.Stores) error) error {
	return l.kv.View(ctx, func(r port.KVReader) error {
		return fn(store.NewReadOnly(r))
	})
}

// publish hands a committed event to the publisher. Failures are logged
// only: the ledger change it describes is already durable.
func (l *Ledger) publish(ctx context.Context, evt domain.Event) {
	evt.ID = uuid.NewString()
	evt.OccurredAt = l.clock.Now().UTC()
	if err := l.events.Publish(ctx, evt); err != nil {
		l.logger.Warn("publish event failed",
			slog.String("type", evt.Type),
			slog.Any("campaign_id", evt.CampaignID),
			slog.Any("error", err))
	}
}

func (l *Ledger) rejected(op string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("op", op), slog.Any("error", err))
	l.logger.Warn("operation rejected", attrs...)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.Event) error { return nil }
