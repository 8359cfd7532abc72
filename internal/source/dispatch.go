package source

import (
	"context"
	"log/slog"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/loop"
	"github.com/jmylchreest/wayglance/internal/signal"
)

// DefaultQueueSize is the channel capacity between an adapter and its dispatcher.
const DefaultQueueSize = 64

// Dispatcher re-publishes adapter messages on the signal bus.
type Dispatcher struct {
	sched  loop.Scheduler
	bus    *signal.Bus
	L      *lua.LState
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher. bus and L are only touched from
// functions posted to sched.
func NewDispatcher(sched loop.Scheduler, bus *signal.Bus, L *lua.LState, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sched:  sched,
		bus:    bus,
		L:      L,
		logger: logger,
	}
}

// SignalName returns the bus signal an adapter message is emitted under.
func SignalName(backend, kind string) string {
	return backend + "::" + kind
}

// Run receives from ch until it is closed or ctx is cancelled, posting each
// message to the scheduler in order.
func (d *Dispatcher) Run(ctx context.Context, backend string, ch <-chan Message) {
	logger := d.logger.With("backend", backend)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				logger.Debug("event channel closed")
				return
			}
			d.sched.Post(func() {
				d.emit(logger, backend, msg)
			})
		}
	}
}

// emit runs on the scheduler goroutine.
func (d *Dispatcher) emit(logger *slog.Logger, backend string, msg Message) {
	name := SignalName(backend, msg.Kind)

	payload := lua.LValue(lua.LNil)
	if msg.Event != nil {
		lv, err := msg.Event.ToLua(d.L)
		if err != nil {
			logger.Warn("failed to convert event payload", "signal", name, "error", err)
		} else if lv != nil {
			payload = lv
		}
	}

	logger.Debug("emitting signal", "signal", name)
	d.bus.Emit(name, payload)
}

// Running tracks one started adapter.
type Running struct {
	name string
	done chan struct{}

	mu  sync.Mutex
	err error
}

// Name returns the adapter name.
func (r *Running) Name() string {
	return r.name
}

// Done is closed when the adapter has stopped and its channel is drained.
func (r *Running) Done() <-chan struct{} {
	return r.done
}

// Err returns the error the adapter stopped with, if any.
func (r *Running) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Start runs adapter.Listen and a dispatcher receive loop on their own
// goroutines. A Listen error is logged and the adapter is not restarted.
func Start(ctx context.Context, adapter Adapter, d *Dispatcher, queueSize int) *Running {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	name := adapter.Name()
	ch := make(chan Message, queueSize)
	r := &Running{name: name, done: make(chan struct{})}
	logger := d.logger.With("backend", name)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer close(ch)

		logger.Info("event source started")
		err := adapter.Listen(ctx, ch)
		switch {
		case err != nil && ctx.Err() == nil:
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			logger.Error("event source stopped", "error", err)
		default:
			logger.Info("event source stopped")
		}
	}()

	go func() {
		defer wg.Done()
		d.Run(ctx, name, ch)
	}()

	go func() {
		wg.Wait()
		close(r.done)
	}()

	return r
}
