package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestEventRoundTripThroughMap(t *testing.T) {
	event := NewPrescriptionCreatedEvent(7, 42)
	values, err := event.ToMap()
	require.NoError(t, err)
	assert.Equal(t, EventPrescriptionCreated, values["type"])

	parsed, err := ParsePrescriptionEvent(values)
	require.NoError(t, err)
	assert.Equal(t, event, parsed)
}

func TestParsePrescriptionEvent_MissingData(t *testing.T) {
	_, err := ParsePrescriptionEvent(map[string]interface{}{"type": EventPrescriptionCreated})
	assert.Error(t, err)
}

func TestPublishConsumeAck(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	pub := NewPublisher(client, 1000, zerolog.Nop())
	con := NewConsumer(client, zerolog.Nop())

	require.NoError(t, con.EnsureGroup(ctx, StreamPrescriptions, ConsumerGroupNotifications))
	// Second call hits BUSYGROUP and must still succeed.
	require.NoError(t, con.EnsureGroup(ctx, StreamPrescriptions, ConsumerGroupNotifications))

	msgID, err := pub.Publish(ctx, StreamPrescriptions, NewPrescriptionCreatedEvent(7, 42))
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	msgs, err := con.Read(ctx, StreamPrescriptions, ConsumerGroupNotifications, "worker-1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, msgID, msgs[0].ID)
	assert.Equal(t, int64(7), msgs[0].Event.PrescriptionID)
	assert.Equal(t, int64(42), msgs[0].Event.PatientID)

	pending, err := con.Pending(ctx, StreamPrescriptions, ConsumerGroupNotifications)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	// Unacked messages are replayed to the same consumer.
	replay, err := con.ReadPending(ctx, StreamPrescriptions, ConsumerGroupNotifications, "worker-1", 10)
	require.NoError(t, err)
	require.Len(t, replay, 1)

	require.NoError(t, con.Ack(ctx, StreamPrescriptions, ConsumerGroupNotifications, msgID))
	pending, err = con.Pending(ctx, StreamPrescriptions, ConsumerGroupNotifications)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}

func TestRead_DropsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	con := NewConsumer(client, zerolog.Nop())
	require.NoError(t, con.EnsureGroup(ctx, StreamPrescriptions, ConsumerGroupNotifications))

	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamPrescriptions,
		Values: map[string]interface{}{"type": "garbage"},
	}).Err())

	msgs, err := con.Read(ctx, StreamPrescriptions, ConsumerGroupNotifications, "worker-1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	pending, err := con.Pending(ctx, StreamPrescriptions, ConsumerGroupNotifications)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}
