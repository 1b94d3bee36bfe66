package configs

import "time"

// Auth configures verification of the bearer tokens that authenticate
// callers. Tokens are HS256 JWTs whose subject is the caller's address.
type Auth struct {
	JWTSecret string        `env:"JWT_SECRET"`
	Issuer    string        `env:"ISSUER" envDefault:"reward-ledger"`
	ClockSkew time.Duration `env:"CLOCK_SKEW" envDefault:"30s"`
}
