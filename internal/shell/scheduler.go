package shell

import (
	"sync"
	"sync/atomic"
	"time"

	glib "github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/wayglance/internal/loop"
)

// Scheduler is a loop.Scheduler backed by the GLib main context.
//
// Posted functions go through a single FIFO queue drained from one idle
// source, so functions posted from one goroutine run in order.
type Scheduler struct {
	mu      sync.Mutex
	queue   []func()
	pending bool
}

var _ loop.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler for the default GLib main context.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Post implements loop.Scheduler.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	schedule := !s.pending
	s.pending = true
	s.mu.Unlock()

	if schedule {
		glib.IdleAdd(s.drain)
	}
}

func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.pending = false
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}

// Every implements loop.Scheduler with a GLib timeout source.
func (s *Scheduler) Every(d time.Duration, fn func()) loop.Source {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	src := &timeoutSource{}
	src.handle = glib.TimeoutAdd(uint(ms), func() bool {
		if src.removed.Load() {
			return false
		}
		fn()
		return !src.removed.Load()
	})
	return src
}

type timeoutSource struct {
	handle  glib.SourceHandle
	once    sync.Once
	removed atomic.Bool
}

// Cancel removes the timeout exactly once. It may run inside the callback.
func (t *timeoutSource) Cancel() {
	t.once.Do(func() {
		t.removed.Store(true)
		glib.SourceRemove(t.handle)
	})
}
