package usecase

import (
	"context"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// ContextAuthenticator accepts a principal when it equals the caller that
// the inbound adapter stored with domain.WithCaller.
type ContextAuthenticator struct{}

func (ContextAuthenticator) Authenticate(ctx context.Context, principal domain.Address) error {
	caller, ok := domain.CallerFrom(ctx)
	if !ok || principal.IsZero() || caller != principal {
		return domain.ErrNotAuthorized
	}
	return nil
}

// Gate enforces the per-operation authorization policy. It has no state
// beyond the authenticator it consults.
type Gate struct {
	auth port.Authenticator
}

// Require fails with domain.ErrNotAuthorized unless the caller is principal.
func (g Gate) Require(ctx context.Context, principal domain.Address) error {
	return g.auth.Authenticate(ctx, principal)
}

// RequireAny succeeds when the caller is one of principals. Zero addresses
// never match.
func (g Gate) RequireAny(ctx context.Context, principals ...domain.Address) error {
	for _, p := range principals {
		if p.IsZero() {
			continue
		}
		if err := g.auth.Authenticate(ctx, p); err == nil {
			return nil
		}
	}
	return domain.ErrNotAuthorized
}
