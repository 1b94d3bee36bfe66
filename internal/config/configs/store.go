package configs

import "strings"

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreLevelDB  = "leveldb"
	StorePostgres = "postgres"
)

// Store selects the key-value backend of the ledger.
type Store struct {
	// Driver is one of memory, leveldb or postgres.
	Driver string `env:"DRIVER" envDefault:"memory"`
	// Path is the LevelDB data directory. The database lives in its
	// "ledger" subdirectory.
	Path string `env:"PATH" envDefault:"./data"`
}

// DriverName normalises Driver; unknown values fall back to memory.
func (c Store) DriverName() string {
	switch strings.ToLower(c.Driver) {
	case StoreLevelDB:
		return StoreLevelDB
	case StorePostgres, "psql":
		return StorePostgres
	default:
		return StoreMemory
	}
}
