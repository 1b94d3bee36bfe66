package events

import (
	"context"
	"errors"

	"reward-ledger/internal/core/domain"
	"reward-ledger/internal/core/port"
)

// Multi delivers every event to all publishers and joins their errors.
type Multi []port.EventPublisher

func (m Multi) Publish(ctx context.Context, evt domain.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
