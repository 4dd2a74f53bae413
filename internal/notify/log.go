// Package notify delivers sale events to interested parties.
package notify

import (
	"context"

	"retail_sales/internal/sales"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log. It is the default when no message
// broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With(zap.String("publisher", "log"))}
}

func (p *LogPublisher) Publish(_ context.Context, event sales.Event) error {
	p.logger.Info("sale event",
		zap.String("type", string(event.Type)),
		zap.String("sale_id", event.SaleID.String()),
		zap.String("sale_number", event.SaleNumber),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
