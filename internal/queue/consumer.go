package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Message represents a message read from a Redis stream.
type Message struct {
	ID    string
	Event PrescriptionEvent
}

// Consumer defines the interface for consuming events from a stream.
type Consumer interface {
	// EnsureGroup creates the consumer group (and the stream) if missing.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read returns new messages for this consumer, blocking up to block.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// ReadPending returns messages delivered to this consumer but never acknowledged.
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)

	// Ack removes messages from the consumer's pending list.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error

	// Pending returns the number of unacknowledged messages for the group.
	Pending(ctx context.Context, stream, group string) (int64, error)
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

func NewConsumer(client redis.UniversalClient, logger zerolog.Logger) Consumer {
	return &RedisConsumer{
		client: client,
		logger: logger.With().Str("component", "consumer").Logger(),
	}
}

// EnsureGroup runs XGROUP CREATE ... MKSTREAM from "0" so events published before
// the first worker started are still delivered.
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}
	c.logger.Info().Str("stream", stream).Str("group", group).Msg("consumer group created")
	return nil
}

func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.read(ctx, stream, group, consumer, ">", count, block)
}

// ReadPending uses "0" instead of ">" to replay this consumer's unacknowledged messages.
func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	return c.read(ctx, stream, group, consumer, "0", count, -1)
}

func (c *RedisConsumer) read(ctx context.Context, stream, group, consumer, id string, count int64, block time.Duration) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, id},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	var messages []Message
	for _, s := range streams {
		for _, msg := range s.Messages {
			event, err := ParsePrescriptionEvent(msg.Values)
			if err != nil {
				// Malformed entries are acked so they do not come back on every restart.
				c.logger.Warn().Err(err).Str("msg_id", msg.ID).Msg("dropping malformed stream entry")
				_ = c.Ack(ctx, stream, group, msg.ID)
				continue
			}
			messages = append(messages, Message{ID: msg.ID, Event: event})
		}
	}
	return messages, nil
}

func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

func (c *RedisConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	info, err := c.client.XPending(ctx, stream, group).Result()
	if err != nil {
		return 0, fmt.Errorf("xpending: %w", err)
	}
	return info.Count, nil
}
