package loop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler whose clock only moves when Advance is called. Posted
// work runs on the goroutine that calls Drain or Advance. It is intended for
// tests.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	queue  []func()
	timers []*manualTimer
}

type manualTimer struct {
	owner     *Manual
	seq       uint64
	period    time.Duration
	next      time.Duration
	fn        func()
	cancelled bool
}

// NewManual returns a Manual scheduler at elapsed time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Post implements Scheduler.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Every implements Scheduler.
func (m *Manual) Every(d time.Duration, fn func()) Source {
	if d <= 0 {
		d = time.Millisecond
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{
		owner:  m,
		seq:    m.seq,
		period: d,
		next:   m.now + d,
		fn:     fn,
	}
	m.timers = append(m.timers, t)
	return t
}

// Drain runs queued work until the queue is empty, including work queued
// while draining. It returns the number of functions run.
func (m *Manual) Drain() int {
	n := 0
	for {
		m.mu.Lock()
		batch := m.queue
		m.queue = nil
		m.mu.Unlock()

		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			fn()
			n++
		}
	}
}

// Advance moves the clock forward by d, firing due timers in deadline order.
// Queued work is drained before and after each firing.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()

	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
		m.Drain()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// Elapsed returns the total time advanced so far.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Timers returns the number of live periodic sources.
func (m *Manual) Timers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	return len(m.timers)
}

// Pending returns the number of queued functions.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// nextDue picks the earliest timer due at or before target, moves the clock
// to its deadline and reschedules it.
func (m *Manual) nextDue(target time.Duration) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].next == m.timers[j].next {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].next < m.timers[j].next
	})

	if len(m.timers) == 0 || m.timers[0].next > target {
		return nil
	}
	t := m.timers[0]
	m.now = t.next
	t.next += t.period
	return t
}

func (m *Manual) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.timers); i++ {
		m.timers[i] = nil
	}
	m.timers = live
}

func (t *manualTimer) Cancel() {
	t.owner.mu.Lock()
	t.cancelled = true
	t.owner.mu.Unlock()
}
