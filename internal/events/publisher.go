package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	client *redis.Client
	now    func() time.Time
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, now: time.Now}
}

// Publish appends the event to the stream as a single "event" field holding its JSON.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	eventJSON, err := Encode(eventType, p.now().UTC(), data)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return errors.Wrap(err, "failed to publish event")
	}

	return nil
}

// Encode builds the wire form of an event.
func Encode(eventType string, ts time.Time, data any) ([]byte, error) {
	event := Event{
		Type:      eventType,
		Timestamp: ts,
		Data:      data,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event")
	}
	return eventJSON, nil
}
