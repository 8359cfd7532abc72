package loop

import "errors"

// ErrAlreadyRunning is returned by Run when another goroutine is running the loop.
var ErrAlreadyRunning = errors.New("loop is already running")
