package events

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	name   string
	accept map[string]bool
	err    error

	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) OnEvent(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return o.err
}

func (o *recordingObserver) GetName() string { return o.name }

func (o *recordingObserver) ShouldHandle(eventType string) bool {
	return o.accept == nil || o.accept[eventType]
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

func TestDispatch_FiltersAndContinuesOnError(t *testing.T) {
	d := NewEventDispatcher()
	failing := &recordingObserver{name: "failing", err: errors.New("boom")}
	filtered := &recordingObserver{name: "filtered", accept: map[string]bool{TablesReloaded: true}}
	all := &recordingObserver{name: "all"}

	d.Register(failing)
	d.Register(filtered)
	d.Register(all)
	require.Equal(t, 3, d.ObserverCount())

	d.Dispatch(NewEvent(context.Background(), MatchupsUpdated, MatchupsUpdatedEvent{Reason: "favorite", Rows: 4}))

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 0, filtered.count())
	require.Equal(t, 1, all.count())

	payload, ok := DataAs[MatchupsUpdatedEvent](all.events[0])
	require.True(t, ok)
	assert.Equal(t, "favorite", payload.Reason)

	_, ok = DataAs[TablesReloadedEvent](all.events[0])
	assert.False(t, ok)
}

func TestDispatchAsync(t *testing.T) {
	d := NewEventDispatcher()
	obs := &recordingObserver{name: "async"}
	d.Register(obs)

	d.DispatchAsync(NewEvent(context.Background(), RefreshFailed, RefreshFailedEvent{Error: "offline"}))

	assert.Eventually(t, func() bool { return obs.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestUnregisterAndClear(t *testing.T) {
	d := NewEventDispatcher()
	a := &recordingObserver{name: "a"}
	b := &recordingObserver{name: "b"}
	d.Register(a)
	d.Register(b)

	d.Unregister(a)
	assert.Equal(t, 1, d.ObserverCount())

	d.Dispatch(Event{Type: MatchupsUpdated})
	assert.Equal(t, 0, a.count())
	assert.Equal(t, 1, b.count())

	d.Clear()
	assert.Zero(t, d.ObserverCount())
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(zerolog.New(&buf).Level(zerolog.WarnLevel))

	require.NoError(t, obs.OnEvent(Event{Type: MatchupsUpdated}))
	assert.Zero(t, buf.Len(), "updates log at debug")

	require.NoError(t, obs.OnEvent(NewEvent(context.Background(), RefreshFailed, RefreshFailedEvent{Error: "offline"})))
	assert.Contains(t, buf.String(), "offline")
	assert.True(t, obs.ShouldHandle("anything"))
}
