package shell

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/wayglance/internal/config"
)

// namespace is the layer-shell namespace compositors see for our windows.
const namespace = "wayglance"

// Windows keeps one layer-shell window per matching monitor.
type Windows struct {
	app     *gtk.Application
	cfg     *config.Config
	builder *Builder
	logger  *slog.Logger

	open map[string]*gtk.ApplicationWindow // Keyed by connector
}

// NewWindows creates the window manager for cfg.
func NewWindows(app *gtk.Application, cfg *config.Config, builder *Builder, logger *slog.Logger) *Windows {
	if logger == nil {
		logger = slog.Default()
	}
	return &Windows{
		app:     app,
		cfg:     cfg,
		builder: builder,
		logger:  logger,
		open:    make(map[string]*gtk.ApplicationWindow),
	}
}

// Start opens windows on the current monitors and follows hotplug.
func (w *Windows) Start() error {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return ErrNoDisplay
	}

	monitors := display.Monitors()
	for i := uint(0); i < monitors.NItems(); i++ {
		if m := monitorAt(monitors, i); m != nil {
			w.openFor(m)
		}
	}

	// Removed monitors have already left the list; their windows close
	// from the per-monitor invalidate handler.
	monitors.ConnectItemsChanged(func(position, removed, added uint) {
		for i := position; i < position+added; i++ {
			if m := monitorAt(monitors, i); m != nil {
				w.openFor(m)
			}
		}
	})
	return nil
}

// Count returns the number of open windows.
func (w *Windows) Count() int {
	return len(w.open)
}

// CloseAll closes every window, which destroys their widget trees.
func (w *Windows) CloseAll() {
	for connector, win := range w.open {
		delete(w.open, connector)
		win.Destroy()
	}
}

func monitorAt(list *gio.ListModel, i uint) *gdk.Monitor {
	obj := list.Item(i)
	if obj == nil {
		return nil
	}
	m, ok := obj.Cast().(*gdk.Monitor)
	if !ok {
		return nil
	}
	return m
}

func (w *Windows) openFor(monitor *gdk.Monitor) {
	connector := monitor.Connector()
	if connector == "" {
		connector = "unknown"
	}
	logger := w.logger.With("monitor", connector)

	if !w.cfg.WantsMonitor(connector) {
		logger.Debug("monitor not selected by config")
		return
	}
	if _, exists := w.open[connector]; exists {
		return
	}

	// A tree that fails to build has already released its bindings; the
	// monitor gets no window.
	child, err := w.builder.Build(w.cfg.Child)
	if err != nil {
		logger.Error("failed to build widget tree, not opening window", "error", err)
		return
	}

	win := w.newWindow(monitor)
	win.SetChild(child)

	w.open[connector] = win
	win.ConnectDestroy(func() {
		if w.open[connector] == win {
			delete(w.open, connector)
		}
	})

	var invalidate coreglib.SignalHandle
	invalidate = monitor.ConnectInvalidate(func() {
		logger.Info("monitor invalidated, closing window")
		monitor.HandlerDisconnect(invalidate)
		win.Destroy()
	})

	logger.Info("opening window")
	win.Present()
}

func (w *Windows) newWindow(monitor *gdk.Monitor) *gtk.ApplicationWindow {
	win := gtk.NewApplicationWindow(w.app)
	win.SetTitle(w.cfg.Title)
	win.AddCSSClass(namespace)

	window := &win.Window
	layershell.InitForWindow(window)
	layershell.SetNamespace(window, namespace)
	layershell.SetMonitor(window, monitor)
	layershell.SetLayer(window, layerShellLayer(w.cfg.Layer))

	if w.cfg.ExclusiveZone {
		layershell.AutoExclusiveZoneEnable(window)
	}

	if a := w.cfg.Anchors; a != nil {
		for _, e := range []struct {
			edge layershell.LayerShellEdge
			on   bool
		}{
			{layershell.LayerShellEdgeTop, a.Top},
			{layershell.LayerShellEdgeRight, a.Right},
			{layershell.LayerShellEdgeBottom, a.Bottom},
			{layershell.LayerShellEdgeLeft, a.Left},
		} {
			layershell.SetAnchor(window, e.edge, e.on)
		}
	}

	if m := w.cfg.Margins; m != nil {
		layershell.SetMargin(window, layershell.LayerShellEdgeTop, m.Top)
		layershell.SetMargin(window, layershell.LayerShellEdgeRight, m.Right)
		layershell.SetMargin(window, layershell.LayerShellEdgeBottom, m.Bottom)
		layershell.SetMargin(window, layershell.LayerShellEdgeLeft, m.Left)
	}

	return win
}

func layerShellLayer(l config.Layer) layershell.LayerShellLayer {
	switch l {
	case config.LayerBackground:
		return layershell.LayerShellLayerBackground
	case config.LayerBottom:
		return layershell.LayerShellLayerBottom
	case config.LayerOverlay:
		return layershell.LayerShellLayerOverlay
	default:
		return layershell.LayerShellLayerTop
	}
}
