package dynamic

import (
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/loop"
	"github.com/jmylchreest/wayglance/internal/signal"
)

// Binder holds what bindings need from the running application.
type Binder struct {
	sched  loop.Scheduler
	bus    *signal.Bus
	logger *slog.Logger
}

// NewBinder creates a Binder. A nil logger uses slog.Default().
func NewBinder(sched loop.Scheduler, bus *signal.Bus, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{sched: sched, bus: bus, logger: logger}
}

// Bus returns the signal bus bindings subscribe to.
func (b *Binder) Bus() *signal.Bus {
	return b.bus
}

// Scheduler returns the scheduler interval bindings run on.
func (b *Binder) Scheduler() loop.Scheduler {
	return b.sched
}

type subscription struct {
	name string
	id   signal.ID
}

// binding is the live link for one property.
type binding struct {
	id       ulid.ULID
	disposed bool
	timer    loop.Source
	subs     []subscription
	bus      *signal.Bus
}

func (bd *binding) dispose() {
	if bd.disposed {
		return
	}
	bd.disposed = true
	if bd.timer != nil {
		bd.timer.Cancel()
	}
	for _, s := range bd.subs {
		bd.bus.Unsubscribe(s.name, s.id)
	}
	bd.subs = nil
}

// Bind applies the current value of v to target with apply and keeps it
// updated until target is disposed. prop names the property in logs and
// errors.
//
// A Static value is applied once. An Interval value is polled immediately, and
// a failing first poll is returned as an error with nothing scheduled. A Signal
// value is evaluated with a nil payload first; a failure there is only logged.
func (v Value[T]) Bind(b *Binder, target Target, prop string, apply func(T)) error {
	switch v.kind {
	case KindInterval:
		return v.bindInterval(b, target, prop, apply)
	case KindSignal:
		v.bindSignal(b, target, prop, apply)
		return nil
	default:
		apply(v.static)
		return nil
	}
}

func (v Value[T]) bindInterval(b *Binder, target Target, prop string, apply func(T)) error {
	initial, err := v.poll()
	if err != nil {
		return fmt.Errorf("initial value of %s: %w", prop, err)
	}
	apply(initial)

	bd := &binding{id: ulid.Make(), bus: b.bus}
	logger := b.logger.With("property", prop, "binding", bd.id.String())

	bd.timer = b.sched.Every(v.period, func() {
		if bd.disposed {
			return
		}
		next, err := v.poll()
		// The callback may have destroyed the target.
		if bd.disposed {
			return
		}
		if err != nil {
			logger.Warn("interval callback failed", "error", err)
			return
		}
		apply(next)
	})
	logger.Debug("interval binding created", "period", v.period)

	target.OnDispose(func() {
		bd.dispose()
		logger.Debug("interval binding released")
	})
	return nil
}

func (v Value[T]) bindSignal(b *Binder, target Target, prop string, apply func(T)) {
	bd := &binding{id: ulid.Make(), bus: b.bus}
	logger := b.logger.With("property", prop, "binding", bd.id.String())

	if initial, err := v.react(lua.LNil); err != nil {
		logger.Warn("initial signal callback failed", "error", err)
	} else {
		apply(initial)
	}

	listener := func(payload lua.LValue) {
		if bd.disposed {
			return
		}
		next, err := v.react(payload)
		if bd.disposed {
			return
		}
		if err != nil {
			logger.Warn("signal callback failed", "error", err)
			return
		}
		apply(next)
	}

	for _, name := range v.names {
		bd.subs = append(bd.subs, subscription{name: name, id: b.bus.Subscribe(name, listener)})
	}
	logger.Debug("signal binding created", "signals", v.names)

	target.OnDispose(func() {
		bd.dispose()
		logger.Debug("signal binding released")
	})
}
