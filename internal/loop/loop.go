package loop

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a Scheduler backed by a plain goroutine. Call Run on the goroutine
// that should own the scheduled work.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	logger  *slog.Logger
	running atomic.Bool
}

// New creates a Loop. It does nothing until Run is called.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Post implements Scheduler.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Every implements Scheduler. A non-positive period is treated as one
// millisecond.
func (l *Loop) Every(d time.Duration, fn func()) Source {
	if d <= 0 {
		d = time.Millisecond
	}
	src := &tickerSource{stop: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if !src.cancelled.Load() {
						fn()
					}
				})
			case <-src.stop:
				return
			}
		}
	}()

	return src
}

// Run executes posted work until ctx is cancelled. It returns ErrAlreadyRunning
// if the loop is already being run by another goroutine.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	l.logger.Debug("loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("loop stopped")
			return ctx.Err()
		case <-l.wake:
			l.drain()
		}
	}
}

// drain runs everything queued so far, including work queued while draining.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

type tickerSource struct {
	once      sync.Once
	cancelled atomic.Bool
	stop      chan struct{}
}

func (s *tickerSource) Cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		close(s.stop)
	})
}
