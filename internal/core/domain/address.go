package domain

import (
	"context"
	"strings"
)

// Address identifies a principal, pool, asset or token. Addresses are opaque
// strings (for example Stellar strkeys) and are compared byte for byte.
type Address string

// ParseAddress trims surrounding whitespace from s.
func ParseAddress(s string) Address {
	return Address(strings.TrimSpace(s))
}

func (a Address) String() string { return string(a) }

// IsZero reports whether the address is empty.
func (a Address) IsZero() bool { return a == "" }

type callerKey struct{}

// WithCaller returns a context carrying the authenticated caller of the
// current operation. Inbound adapters set it after verifying credentials.
func WithCaller(ctx context.Context, caller Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the authenticated caller stored in ctx.
func CallerFrom(ctx context.Context) (Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(Address)
	if !ok || caller.IsZero() {
		return "", false
	}
	return caller, true
}
