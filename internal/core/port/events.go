package port

import (
	"context"

	"reward-ledger/internal/core/domain"
)

// EventPublisher receives ledger events after their operation committed.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event) error
}

// Authenticator verifies that the current operation was authorized by
// principal. It returns domain.ErrNotAuthorized otherwise.
type Authenticator interface {
	Authenticate(ctx context.Context, principal domain.Address) error
}
