// Package audit subscribes to domain events and writes them to the
// structured log, giving operators an activity trail without a second
// storage system.
package audit

import (
	"context"
	"fmt"

	"scanrate_backend/internal/events"
	"scanrate_backend/platform/logger"
)

// Module is the audit trail event subscriber.
type Module struct {
	log *logger.Logger
}

// NewModule creates the audit module.
func NewModule(log *logger.Logger) *Module {
	return &Module{log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ProductSeeded{}.EventName(), m)
	bus.Subscribe(events.ReviewSubmitted{}.EventName(), m)

	m.log.Info("audit module registered event handlers")
}

// Handle routes events to the appropriate log line.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ProductSeeded:
		m.log.Info("product seeded from lookup",
			"event", e.EventName(),
			"barcode", e.Barcode,
			"name", e.Name,
			"occurredAt", e.OccurredAt(),
		)
	case events.ReviewSubmitted:
		m.log.WithUserID(e.UserID).Info("review submitted",
			"event", e.EventName(),
			"barcode", e.Barcode,
			"reviewId", e.ReviewID,
			"rating", e.Rating,
			"updated", e.Updated,
		)
	default:
		return fmt.Errorf("audit: unexpected event %s", event.EventName())
	}
	return nil
}

// Compile-time check that Module implements events.Handler
var _ events.Handler = (*Module)(nil)
