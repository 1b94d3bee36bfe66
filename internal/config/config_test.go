package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reward-ledger/internal/config/configs"
)

func TestLoadFromEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("STORE_DRIVER", "LevelDB")
	t.Setenv("AUTH_CLOCK_SKEW", "1m")
	t.Setenv("LEDGER_SEED_BALANCES", "CTOKEN:GALICE:10,CTOKEN:GBOB:20")
	t.Setenv("EVENTS_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, configs.StoreLevelDB, cfg.Store.DriverName())
	assert.Equal(t, time.Minute, cfg.Auth.ClockSkew)
	assert.Equal(t, "reward-ledger", cfg.Auth.Issuer)
	assert.Equal(t, []string{"CTOKEN:GALICE:10", "CTOKEN:GBOB:20"}, cfg.Ledger.SeedBalances)
	assert.Len(t, cfg.Events.KafkaBrokers, 2)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, "localhost:5432", cfg.Psql.Addr.Host)
}

func TestStoreDriverFallback(t *testing.T) {
	assert.Equal(t, configs.StoreMemory, configs.Store{Driver: "bogus"}.DriverName())
	assert.Equal(t, configs.StorePostgres, configs.Store{Driver: "psql"}.DriverName())
}
