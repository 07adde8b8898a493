package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("events")

// RedisPublisher publishes events on a Redis Pub/Sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher for channel. An empty channel means EventsChannel.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = EventsChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Publish sends event to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	ctx, span := tracer.Start(ctx, "RedisPublisher.Publish", trace.WithAttributes(
		attribute.String("event.channel", p.channel),
		attribute.String("event.type", event.Type),
	))
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not publish event")
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
