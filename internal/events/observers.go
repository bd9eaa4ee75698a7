package events

import (
	"github.com/rs/zerolog"
)

// LogObserver writes every event to a logger.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates an observer logging to logger at debug level, or
// warn level for failures.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// OnEvent logs the event.
func (o *LogObserver) OnEvent(event Event) error {
	entry := o.logger.Debug()
	if event.Type == RefreshFailed {
		entry = o.logger.Warn()
	}
	entry.Str("event", event.Type).Interface("data", event.Data).Msg("Event")
	return nil
}

// GetName returns the observer's name.
func (o *LogObserver) GetName() string {
	return "LogObserver"
}

// ShouldHandle accepts every event.
func (o *LogObserver) ShouldHandle(string) bool {
	return true
}
