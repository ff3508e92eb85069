package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
)

func setupMockRedis(t *testing.T) (*miniredis.Miniredis, config.RedisConfig) {
	t.Helper()

	mockRedis := miniredis.RunT(t)

	return mockRedis, config.RedisConfig{
		Enabled:  true,
		Addr:     mockRedis.Addr(),
		Password: "",
		DB:       0,
		EventKey: "search:events:test",
	}
}

func sampleEvents(n int) []Event {
	now := time.Now()
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{
			Key:       eventKey(now),
			Type:      EventSearch,
			Timestamp: now,
			Query:     "tv deals",
			Source:    SourceDatabaseHit,
		}
	}
	return events
}

func TestRedisEventSink(t *testing.T) {
	t.Run("flush pushes serialized events", func(t *testing.T) {
		mockRedis, cfg := setupMockRedis(t)

		sink, err := NewRedisEventSink(cfg)
		require.NoError(t, err)
		defer func() { _ = sink.Close() }()

		events := sampleEvents(3)
		require.NoError(t, sink.Flush(context.Background(), events))

		stored, err := mockRedis.List(cfg.EventKey)
		require.NoError(t, err)
		require.Len(t, stored, 3)

		var decoded Event
		require.NoError(t, json.Unmarshal([]byte(stored[0]), &decoded))
		assert.Equal(t, EventSearch, decoded.Type)
		assert.Equal(t, "tv deals", decoded.Query)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		_, cfg := setupMockRedis(t)

		sink, err := NewRedisEventSink(cfg)
		require.NoError(t, err)
		defer func() { _ = sink.Close() }()

		assert.NoError(t, sink.Flush(context.Background(), nil))
	})

	t.Run("unreachable redis fails construction", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Addr: "localhost:1", EventKey: "k"}

		_, err := NewRedisEventSink(cfg)
		assert.Error(t, err)
	})

	t.Run("flush after server shutdown returns a sink error", func(t *testing.T) {
		mockRedis, cfg := setupMockRedis(t)

		sink, err := NewRedisEventSink(cfg)
		require.NoError(t, err)
		defer func() { _ = sink.Close() }()

		mockRedis.Close()

		err = sink.Flush(context.Background(), sampleEvents(1))
		assert.Error(t, err)
	})
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := NewLogSink()

	assert.NoError(t, sink.Flush(context.Background(), nil))
	assert.NoError(t, sink.Flush(context.Background(), sampleEvents(5)))
}
