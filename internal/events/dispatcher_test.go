package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ctchen222/tictactoe-rooms/internal/events"
	"ctchen222/tictactoe-rooms/internal/events/mock_events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDispatcher_ForwardsToSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_events.NewMockPublisher(ctrl)

	event, err := events.New(events.RoomCreated, events.RoomPayload{RoomID: "r1"})
	require.NoError(t, err)

	delivered := make(chan struct{})
	sink.EXPECT().Publish(gomock.Any(), event).DoAndReturn(func(context.Context, events.Event) error {
		close(delivered)
		return nil
	})

	d := events.NewDispatcher(sink, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.NoError(t, d.Publish(context.Background(), event))

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("event was not forwarded")
	}

	cancel()
	<-done
}

func TestDispatcher_QueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_events.NewMockPublisher(ctrl)
	d := events.NewDispatcher(sink, 1)

	require.NoError(t, d.Publish(context.Background(), events.Event{Type: events.RoomCreated}))
	err := d.Publish(context.Background(), events.Event{Type: events.RoomClosed})

	assert.ErrorIs(t, err, events.ErrQueueFull)
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_events.NewMockPublisher(ctrl)

	// Given two queued events
	d := events.NewDispatcher(sink, 2)
	require.NoError(t, d.Publish(context.Background(), events.Event{Type: events.PlayerJoined}))
	require.NoError(t, d.Publish(context.Background(), events.Event{Type: events.PlayerLeft}))

	// Then both reach the sink in order, the second one failing
	gomock.InOrder(
		sink.EXPECT().Publish(gomock.Any(), events.Event{Type: events.PlayerJoined}).Return(nil),
		sink.EXPECT().Publish(gomock.Any(), events.Event{Type: events.PlayerLeft}).Return(errors.New("boom")),
	)

	// When the dispatcher runs with an already cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)
}
