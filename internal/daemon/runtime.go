package daemon

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/jmylchreest/wayglance/internal/api"
	"github.com/jmylchreest/wayglance/internal/config"
	"github.com/jmylchreest/wayglance/internal/dynamic"
	"github.com/jmylchreest/wayglance/internal/loop"
	"github.com/jmylchreest/wayglance/internal/script"
	"github.com/jmylchreest/wayglance/internal/signal"
	"github.com/jmylchreest/wayglance/internal/source"
	"github.com/jmylchreest/wayglance/internal/source/hyprland"
	"github.com/jmylchreest/wayglance/internal/source/mpris"
	"github.com/jmylchreest/wayglance/internal/sysinfo"
)

// ErrNoScheduler is returned by New without a scheduler.
var ErrNoScheduler = errors.New("daemon: scheduler is required")

// Backends are the script-facing clients and the event sources.
type Backends struct {
	Hyprland api.Hyprland
	Player   api.Player
	System   *sysinfo.Sampler
	Adapters []source.Adapter
}

// DefaultBackends builds the backends enabled in settings. A backend that is
// enabled but unavailable, such as Hyprland outside a Hyprland session, is
// logged and left out.
func DefaultBackends(settings *config.Settings, logger *slog.Logger) *Backends {
	b := &Backends{System: sysinfo.New()}

	if settings.Hyprland.Enabled {
		dir, err := hyprland.SocketDir()
		switch {
		case errors.Is(err, hyprland.ErrNoInstance):
			logger.Info("hyprland not detected, skipping", "error", err)
		case err != nil:
			logger.Warn("hyprland sockets not found, skipping", "error", err)
		default:
			b.Hyprland = api.HyprlandClient{Client: hyprland.NewClient(dir)}
			b.Adapters = append(b.Adapters, hyprland.NewListener(dir, logger))
		}
	}

	if settings.MPRIS.Enabled {
		b.Player = mpris.NewController(settings.MPRIS.Player)
		b.Adapters = append(b.Adapters, mpris.NewListener(settings.MPRIS.Player, logger))
	}

	return b
}

// Options configures a Runtime.
type Options struct {
	Settings  *config.Settings
	Scheduler loop.Scheduler
	Logger    *slog.Logger

	// Backends defaults to DefaultBackends(Settings, Logger).
	Backends *Backends
}

// Runtime is the scripting side of one wayglance process. It is confined to
// the scheduler goroutine, except for StartAdapters and Wait.
type Runtime struct {
	settings *config.Settings
	logger   *slog.Logger
	sched    loop.Scheduler
	backends *Backends

	state  *script.State
	bus    *signal.Bus
	binder *dynamic.Binder

	running []*source.Running
}

// New creates the Lua state and installs the wayglance API into it.
func New(opts Options) (*Runtime, error) {
	if opts.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Backends == nil {
		opts.Backends = DefaultBackends(opts.Settings, logger)
	}

	r := &Runtime{
		settings: opts.Settings,
		logger:   logger,
		sched:    opts.Scheduler,
		backends: opts.Backends,
		state:    script.NewState(script.WithLogger(logger)),
		bus:      signal.NewBus(),
	}
	r.binder = dynamic.NewBinder(r.sched, r.bus, logger)

	err := api.Install(r.state, api.Options{
		Bus:      r.bus,
		Logger:   logger,
		Hyprland: opts.Backends.Hyprland,
		Player:   opts.Backends.Player,
		System:   opts.Backends.System,
	})
	if err != nil {
		_ = r.state.Close()
		return nil, err
	}
	return r, nil
}

// Load runs the layout file at path.
func (r *Runtime) Load(path string) (*config.Config, error) {
	return config.Load(r.state, path)
}

// State returns the Lua state.
func (r *Runtime) State() *script.State {
	return r.state
}

// Bus returns the signal bus.
func (r *Runtime) Bus() *signal.Bus {
	return r.bus
}

// Binder returns the binder for widget properties.
func (r *Runtime) Binder() *dynamic.Binder {
	return r.binder
}

// Adapters returns the names of the configured event sources.
func (r *Runtime) Adapters() []string {
	names := make([]string, 0, len(r.backends.Adapters))
	for _, a := range r.backends.Adapters {
		names = append(names, a.Name())
	}
	return names
}

// StartAdapters starts the event sources, or only those named in only. It
// returns the number started.
func (r *Runtime) StartAdapters(ctx context.Context, only ...string) int {
	d := source.NewDispatcher(r.sched, r.bus, r.state.L, r.logger)
	started := 0
	for _, a := range r.backends.Adapters {
		if len(only) > 0 && !slices.Contains(only, a.Name()) {
			continue
		}
		r.running = append(r.running, source.Start(ctx, a, d, r.settings.Events.QueueSize))
		started++
	}
	return started
}

// Wait blocks until every started adapter has stopped or ctx is done, and
// returns the adapter errors joined.
func (r *Runtime) Wait(ctx context.Context) error {
	var errs []error
	for _, run := range r.running {
		select {
		case <-run.Done():
			if err := run.Err(); err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		}
	}
	return errors.Join(errs...)
}

// Close releases the Lua state.
func (r *Runtime) Close() error {
	return r.state.Close()
}
