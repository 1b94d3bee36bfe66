package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"reward-ledger/internal/adapter/bank"
	"reward-ledger/internal/adapter/events"
	httpadapter "reward-ledger/internal/adapter/http"
	"reward-ledger/internal/adapter/leveldb"
	"reward-ledger/internal/adapter/memory"
	"reward-ledger/internal/adapter/metrics"
	"reward-ledger/internal/adapter/postgres"
	"reward-ledger/internal/adapter/usecase"
	"reward-ledger/internal/config"
	"reward-ledger/internal/config/configs"
	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
	"reward-ledger/internal/db"
	"reward-ledger/internal/logger"
)

// main is the entry point of the reward ledger service. It loads
// configuration, opens the configured key-value backend for the ledger and
// the custody bank, seeds devnet state and serves the HTTP API until a
// termination signal arrives.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log, closer := logger.New(cfg.Log, cfg.Env)
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("reward ledger stopped", slog.Any("error", err))
		closer.Close()
		os.Exit(1)
	}
	log.Info("server gracefully stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	kv, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	publishers := events.Multi{events.NewLogPublisher(log), m}
	if len(cfg.Events.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic)
		if err != nil {
			return err
		}
		defer kp.Close()
		publishers = append(publishers, kp)
		log.Info("publishing events to kafka", slog.String("topic", cfg.Events.Topic))
	}

	clock := clockwork.NewRealClock()
	custodyBank := bank.New(kv, clock, log.With(slog.String("component", "bank")))
	ledger := usecase.NewLedger(kv, custodyBank, domain.ParseAddress(cfg.Ledger.CustodyAddress),
		usecase.WithClock(clock),
		usecase.WithLogger(log.With(slog.String("component", "ledger"))),
		usecase.WithEventPublisher(publishers),
	)

	if err := db.Seed(ctx, custodyBank, ledger, cfg.Ledger, log); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	opts := []httpadapter.Option{
		httpadapter.WithMiddleware(m.Middleware),
		httpadapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	}
	if cfg.Auth.JWTSecret != "" {
		auth, err := httpadapter.NewTokenAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.ClockSkew)
		if err != nil {
			return err
		}
		opts = append(opts, httpadapter.WithTokenAuth(auth))
	} else {
		log.Warn("AUTH_JWT_SECRET is not set; every mutating operation will be rejected")
	}

	handler := httpadapter.NewHandler(ledger, log, opts...)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns the store of the configured driver. The ledger and the
// custody bank share it so payouts commit with the ledger writes.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (port.KVStore, func(), error) {
	switch cfg.Store.DriverName() {
	case configs.StoreLevelDB:
		path := filepath.Join(cfg.Store.Path, "ledger")
		kv, err := leveldb.Open(path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using leveldb store", slog.String("path", path))
		return kv, func() { kv.Close() }, nil

	case configs.StorePostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String(), log); err != nil {
				return nil, nil, err
			}
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection: %w", err)
		}
		log.Info("using postgres store")
		return postgres.NewKVStore(pool, postgres.LedgerTable), pool.Close, nil

	default:
		log.Warn("using in-memory store; state is lost on exit")
		return memory.NewKVStore(), func() {}, nil
	}
}
