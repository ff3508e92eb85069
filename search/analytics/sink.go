package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	"github.com/laxmanfhaneendra/savebucks-sub002/errors"
)

// EventSink receives batches of drained analytics events. Sinks live
// outside the core; a failing sink must never break event recording.
type EventSink interface {
	Flush(ctx context.Context, events []Event) error
}

// LogSink writes drained events to the structured log. It is the default
// sink when no external one is configured.
type LogSink struct{}

// NewLogSink creates a log-backed event sink
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Flush(_ context.Context, events []Event) error {
	byType := map[EventType]int{}
	for _, e := range events {
		byType[e.Type]++
	}
	slog.Info("analytics events drained",
		"total", len(events),
		"searches", byType[EventSearch],
		"errors", byType[EventError],
		"interactions", byType[EventInteraction],
	)
	return nil
}

// maxSinkedEvents caps the Redis list so an idle consumer cannot grow it unbounded
const maxSinkedEvents = 10000

// RedisEventSink pushes drained events onto a capped Redis list for an
// external consumer
type RedisEventSink struct {
	client *redis.Client
	key    string
}

// NewRedisEventSink connects to Redis and verifies the connection
func NewRedisEventSink(cfg config.RedisConfig) (*RedisEventSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewSinkError(fmt.Sprintf("connect to redis at %s", cfg.Addr), err)
	}

	return &RedisEventSink{client: client, key: cfg.EventKey}, nil
}

func (s *RedisEventSink) Flush(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			slog.Debug("skipping unmarshalable event", "key", e.Key, "error", err)
			continue
		}
		values = append(values, data)
	}
	if len(values) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, s.key, values...)
	pipe.LTrim(ctx, s.key, 0, maxSinkedEvents-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewSinkError("push events to redis", err)
	}
	return nil
}

// Close releases the underlying Redis connection
func (s *RedisEventSink) Close() error {
	return s.client.Close()
}
