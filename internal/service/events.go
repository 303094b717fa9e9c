package service

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
)

// EventPublisher receives domain events. A nil publisher disables them.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{}) error
}

// publishEvent is best-effort: a failed publish is logged and otherwise
// ignored so it can never fail the operation that produced it.
func publishEvent(ctx context.Context, pub EventPublisher, log logger.Logger, event string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		log.Warn("failed to publish event", "event", event, "error", err)
	}
}
