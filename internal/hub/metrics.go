package hub

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Move outcomes recorded on the moves counter.
const (
	outcomeAccepted    = "accepted"
	outcomeNotYourTurn = "not_your_turn"
	outcomeInvalid     = "invalid"
	outcomeMalformed   = "malformed"
)

type hubMetrics struct {
	moves    metric.Int64Counter
	sessions metric.Int64UpDownCounter
	rooms    metric.Int64UpDownCounter
}

func newHubMetrics() *hubMetrics {
	meter := otel.Meter("hub")
	fallback := noop.NewMeterProvider().Meter("hub")

	moves, err := meter.Int64Counter("hub.moves",
		metric.WithDescription("Moves received, by outcome"))
	if err != nil {
		slog.Warn("Could not create moves counter", "error", err)
		moves, _ = fallback.Int64Counter("hub.moves")
	}

	sessions, err := meter.Int64UpDownCounter("hub.sessions.active",
		metric.WithDescription("Connected players"))
	if err != nil {
		slog.Warn("Could not create sessions counter", "error", err)
		sessions, _ = fallback.Int64UpDownCounter("hub.sessions.active")
	}

	rooms, err := meter.Int64UpDownCounter("hub.rooms.active",
		metric.WithDescription("Rooms held by the registry"))
	if err != nil {
		slog.Warn("Could not create rooms counter", "error", err)
		rooms, _ = fallback.Int64UpDownCounter("hub.rooms.active")
	}

	return &hubMetrics{moves: moves, sessions: sessions, rooms: rooms}
}

func (m *hubMetrics) move(ctx context.Context, outcome string) {
	m.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("move.outcome", outcome)))
}
