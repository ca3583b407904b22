package ports

import "time"

// TickSource is the periodic callback mechanism that drives a countdown.
type TickSource interface {
	// Start begins calling tick every interval until the returned stop
	// function is called. stop is idempotent and does not block on an
	// in-flight tick.
	Start(interval time.Duration, tick func()) (stop func())
}
