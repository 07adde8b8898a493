package telemetry

import (
	"context"
	"testing"

	"ctchen222/tictactoe-rooms/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitOtel_WithoutEndpoint(t *testing.T) {
	shutdown, err := InitOtel(context.Background(), config.Telemetry{ServiceName: "test"})
	require.NoError(t, err)

	assert.NotNil(t, otel.GetTextMapPropagator())
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewResource(t *testing.T) {
	res, err := newResource(context.Background(), config.Telemetry{ServiceName: "tic-tac-toe", ServiceVersion: "v1.2.3"})
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "tic-tac-toe", attrs["service.name"])
	assert.Equal(t, "v1.2.3", attrs["service.version"])
}
