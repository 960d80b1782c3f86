package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the stream and returns the Redis message ID.
	Publish(ctx context.Context, stream string, event PrescriptionEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client redis.UniversalClient
	maxLen int64
	logger zerolog.Logger
}

// NewPublisher creates a Publisher. maxLen caps the stream approximately; 0 leaves it unbounded.
func NewPublisher(client redis.UniversalClient, maxLen int64, logger zerolog.Logger) Publisher {
	return &RedisPublisher{
		client: client,
		maxLen: maxLen,
		logger: logger.With().Str("component", "publisher").Logger(),
	}
}

// Publish adds the event with XADD and an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event PrescriptionEvent) (string, error) {
	start := time.Now()

	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	messageID, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		p.logger.Error().Err(err).Str("stream", stream).Str("type", event.Type).Msg("xadd failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.logger.Debug().
		Str("stream", stream).
		Str("type", event.Type).
		Str("msg_id", messageID).
		Int64("prescription_id", event.PrescriptionID).
		Dur("duration", time.Since(start)).
		Msg("event published")
	return messageID, nil
}
