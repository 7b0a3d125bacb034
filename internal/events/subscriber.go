package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler processes one decoded event. A returned error leaves the message
// unacknowledged so it is redelivered to the group.
type Handler func(ctx context.Context, event Event) error

// Subscriber reads a stream through a consumer group.
type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	logger        *zap.Logger
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
}

func NewSubscriber(client *redis.Client, config SubscriberConfig, logger *zap.Logger) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.Stream == "" {
		config.Stream = AccountEventsStream
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		logger:        logger.With(zap.String("stream", config.Stream), zap.String("group", config.Group)),
	}
}

// Start blocks until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return errors.Wrap(err, "failed to create consumer group")
	}

	s.logger.Info("subscriber started", zap.String("consumer", s.consumer))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber stopping")
			return ctx.Err()
		default:
			if err := s.readMessages(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				s.logger.Warn("failed to read messages", zap.Error(err))
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Subscriber) readMessages(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read from stream")
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			event, err := Decode(message.Values)
			if err == nil {
				err = s.handler(ctx, event)
			}
			if err != nil {
				s.logger.Warn("failed to process message", zap.String("id", message.ID), zap.Error(err))
				continue
			}

			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				s.logger.Warn("failed to ack message", zap.String("id", message.ID), zap.Error(err))
			}
		}
	}

	return nil
}

// Decode parses the fields of a stream entry written by Publisher. Data is
// left as raw JSON for the handler to unmarshal into the type named by Type.
func Decode(values map[string]any) (Event, error) {
	raw, ok := values["event"].(string)
	if !ok {
		return Event{}, errors.New("message has no event field")
	}

	var wire struct {
		Type      string          `json:"type"`
		Timestamp time.Time       `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Event{}, errors.Wrap(err, "failed to unmarshal event")
	}
	return Event{Type: wire.Type, Timestamp: wire.Timestamp, Data: wire.Data}, nil
}
