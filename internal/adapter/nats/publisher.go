package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// EventPublisher publishes JSON events under a fixed subject prefix, so
// "session.signed_in" goes out as "<prefix>.session.signed_in".
type EventPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewEventPublisher(conn *nats.Conn, subjectPrefix string) (*EventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	return &EventPublisher{
		conn:   conn,
		prefix: strings.Trim(subjectPrefix, "."),
	}, nil
}

func (p *EventPublisher) Subject(event string) string {
	if p.prefix == "" {
		return event
	}
	return p.prefix + "." + event
}

func (p *EventPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event, err)
	}
	return p.PublishRaw(ctx, event, data)
}

func (p *EventPublisher) PublishRaw(ctx context.Context, event string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := p.Subject(event)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message to NATS subject %s: %w", subject, err)
	}
	return nil
}
