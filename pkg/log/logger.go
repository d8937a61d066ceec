package log

// Logger receives protocol capture events.
// A nil Logger means capture is disabled.
type Logger interface {
	// Log records an event. Implementations must be safe for concurrent use
	// and should not block the caller for long.
	Log(event Event)
}

// NoopLogger drops every event. The zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
