package shell

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/wayglance/internal/config"
	"github.com/jmylchreest/wayglance/internal/dynamic"
)

// Options wires the application to the rest of the process.
type Options struct {
	Settings  *config.Settings
	Scheduler *Scheduler
	Binder    *dynamic.Binder
	Logger    *slog.Logger

	// OnActivate runs on the GTK goroutine once the application is up, before
	// any window opens. It is where adapters are started.
	OnActivate func(ctx context.Context)
}

// App is the libadwaita application hosting the layout.
type App struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger

	app     *adw.Application
	style   *Style
	windows *Windows
	running atomic.Bool
}

// New creates the application for cfg.
func New(cfg *config.Config, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	return &App{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With("component", "shell"),
	}
}

// Run runs the GTK main loop until ctx is cancelled or the application
// quits, and returns the exit status.
func (a *App) Run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appID := a.cfg.AppID()
	a.app = adw.NewApplication(appID, 0)

	a.app.ConnectActivate(func() {
		if a.running.Load() {
			a.logger.Warn("application already running")
			return
		}
		a.running.Store(true)
		a.activate(ctx)
	})

	a.app.ConnectShutdown(func() {
		a.logger.Info("application shutting down")
		if a.style != nil {
			a.style.Stop()
		}
		if a.windows != nil {
			a.windows.CloseAll()
		}
		a.running.Store(false)
	})

	stop := context.AfterFunc(ctx, func() {
		coreglib.IdleAdd(a.app.Quit)
	})
	defer stop()

	a.logger.Info("starting application", "app_id", appID)

	// GTK must not see our own command line flags.
	return a.app.Run([]string{os.Args[0]})
}

func (a *App) activate(ctx context.Context) {
	// Keep running while no monitor matches; hotplug may add one.
	a.app.Hold()

	a.style = NewStyle(a.cfg.StylePath(), a.opts.Scheduler, a.logger)
	if err := a.style.Apply(); err != nil {
		a.logger.Error("failed to load style", "error", err)
	} else if a.opts.Settings.Style.HotReload {
		if err := a.style.WatchChanges(ctx, a.opts.Settings.Style.Debounce.Duration()); err != nil {
			a.logger.Warn("failed to watch style", "error", err)
		}
	}

	if a.opts.OnActivate != nil {
		a.opts.OnActivate(ctx)
	}

	builder := NewBuilder(a.opts.Binder, a.logger)
	a.windows = NewWindows(&a.app.Application, a.cfg, builder, a.logger)
	if err := a.windows.Start(); err != nil {
		a.logger.Error("failed to open windows", "error", err)
		a.app.Quit()
	}
}
