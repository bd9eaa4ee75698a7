package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/matchups/internal/events"
)

func TestObserver_Identity(t *testing.T) {
	o := NewObserver(NewHub())
	assert.Equal(t, "WebSocketObserver", o.GetName())
	assert.True(t, o.ShouldHandle(events.MatchupsUpdated))
	assert.True(t, o.ShouldHandle("anything"))
}

func TestObserver_NilHub(t *testing.T) {
	o := NewObserver(nil)
	assert.NoError(t, o.OnEvent(events.Event{Type: events.MatchupsUpdated}))
}

func TestObserver_ForwardsDispatchedEvents(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(NewObserver(hub))

	ctx := context.Background()
	dispatcher.Dispatch(events.NewEvent(ctx, events.MatchupsUpdated, events.MatchupsUpdatedEvent{
		Reason:        "sort",
		Rows:          4,
		SortBy:        "class",
		SortDirection: "ascending",
	}))

	got := readEvent(t, conn)
	assert.Equal(t, events.MatchupsUpdated, got.Type)
	assert.NotEmpty(t, got.ID)

	data, ok := got.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sort", data["reason"])
	assert.Equal(t, float64(4), data["rows"])
}
