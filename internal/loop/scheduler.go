package loop

import "time"

// Scheduler runs functions on the goroutine it owns.
type Scheduler interface {
	// Post queues fn to run on the scheduler goroutine. It is safe to call from
	// any goroutine, including the scheduler goroutine itself. Functions posted
	// from one goroutine run in the order they were posted.
	Post(fn func())

	// Every runs fn on the scheduler goroutine every d until the returned
	// Source is cancelled. The first call happens after d.
	Every(d time.Duration, fn func()) Source
}

// Source is a handle to scheduled periodic work.
type Source interface {
	// Cancel stops further invocations. It is idempotent and may be called
	// from inside the function it cancels.
	Cancel()
}
