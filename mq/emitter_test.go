package mq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktvadmin/logger"
)

type recordingEmitter struct {
	events []Event
	err    error
	closed bool
}

func (r *recordingEmitter) Emit(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingEmitter) Close() error {
	r.closed = true
	return r.err
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisEmitterPublishes(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "ktv-events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	e := NewRedisEmitter(client, "ktv-events")
	require.NoError(t, e.Emit(ctx, Event{Type: BookingCreated, EntityID: "B001"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, BookingCreated, got.Type)
	assert.Equal(t, "B001", got.EntityID)
}

func TestRedisEmitterServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	e := NewRedisEmitter(client, "ktv-events")
	err := e.Emit(context.Background(), Event{Type: BookingDeleted, EntityID: "B002"})
	assert.Error(t, err)
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &recordingEmitter{}
	bad := &recordingEmitter{err: errors.New("boom")}
	f := Fanout{ok, bad}

	err := f.Emit(context.Background(), Event{Type: OrderCreated, EntityID: "O001"})
	assert.EqualError(t, err, "boom")
	assert.Len(t, ok.events, 1)
	assert.Len(t, bad.events, 1)

	assert.Error(t, f.Close())
	assert.True(t, ok.closed)
}

func TestPublishLogsAndStampsTime(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf)
	rec := &recordingEmitter{err: errors.New("broker unavailable")}

	Publish(context.Background(), rec, log, Event{Type: RoomAvailability, EntityID: "R001"})

	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].At.IsZero())
	assert.Contains(t, buf.String(), "emit room.availability R001: broker unavailable")

	// nil emitter is a no-op
	Publish(context.Background(), nil, log, Event{Type: RoomAvailability})
}
