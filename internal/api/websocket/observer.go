package websocket

import (
	"github.com/ramonehamilton/matchups/internal/events"
)

// Observer forwards dispatched events to every connected client.
type Observer struct {
	hub *Hub
}

// NewObserver creates an observer broadcasting through hub.
func NewObserver(hub *Hub) *Observer {
	return &Observer{hub: hub}
}

// OnEvent broadcasts the event. A stopped hub drops it silently.
func (o *Observer) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}
	o.hub.BroadcastEvent(NewEvent(event.Type, event.Data))
	return nil
}

// GetName returns the observer's name.
func (o *Observer) GetName() string {
	return "WebSocketObserver"
}

// ShouldHandle accepts every event.
func (o *Observer) ShouldHandle(string) bool {
	return true
}

var _ events.Observer = (*Observer)(nil)
