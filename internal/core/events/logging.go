package events

import (
	"context"
	"log/slog"
)

// RegisterAuditLog subscribes a handler that writes every event to logger.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	bus.Subscribe(AllEvents, func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "domain event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	})
}
