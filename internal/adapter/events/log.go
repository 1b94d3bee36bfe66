// Package events contains the port.EventPublisher implementations the
// ledger service fans committed events out to.
package events

import (
	"context"
	"log/slog"

	"reward-ledger/internal/core/domain"
)

// LogPublisher writes each event as a structured log record.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With(slog.String("component", "events"))}
}

func (p *LogPublisher) Publish(ctx context.Context, evt domain.Event) error {
	attrs := make([]slog.Attr, 0, len(evt.Attributes)+3)
	attrs = append(attrs,
		slog.String("event_id", evt.ID),
		slog.String("type", evt.Type),
		slog.Any("campaign_id", evt.CampaignID))
	for k, v := range evt.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "ledger event", attrs...)
	return nil
}
