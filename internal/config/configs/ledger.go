package configs

// Ledger holds settings of the reward ledger itself.
type Ledger struct {
	// CustodyAddress is the principal holding campaign funds between
	// funding and payout.
	CustodyAddress string `env:"CUSTODY_ADDRESS" envDefault:"reward-ledger-custody"`
	// Admin, when set, initializes an uninitialized ledger at startup.
	Admin string `env:"ADMIN"`
	// SeedBalances mints devnet balances into the custody bank at startup.
	// Entries have the form token:holder:amount.
	SeedBalances []string `env:"SEED_BALANCES" envSeparator:","`
}
