package shell

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/wayglance/internal/loop"
	"github.com/jmylchreest/wayglance/internal/theme"
	"github.com/jmylchreest/wayglance/internal/watch"
)

// ErrNoDisplay is returned when GTK has no default display.
var ErrNoDisplay = errors.New("no display available")

// Style installs the bundled base stylesheet at application priority and the
// user stylesheet, if any, at user priority. The user sheet can be reloaded
// when the file changes.
type Style struct {
	path     string
	base     *gtk.CSSProvider
	provider *gtk.CSSProvider
	sched    loop.Scheduler
	logger   *slog.Logger
	watcher  *watch.Watcher
}

// NewStyle creates a style loader for the CSS file at path. An empty path
// installs only the base stylesheet.
func NewStyle(path string, sched loop.Scheduler, logger *slog.Logger) *Style {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Style{
		path:     path,
		base:     gtk.NewCSSProvider(),
		provider: gtk.NewCSSProvider(),
		sched:    sched,
		logger:   logger.With("path", path),
	}
	for _, p := range []*gtk.CSSProvider{s.base, s.provider} {
		p.ConnectParsingError(func(section *gtk.CSSSection, err error) {
			s.logger.Warn("css parsing error", "location", section.String(), "error", err)
		})
	}
	return s
}

// Apply loads the stylesheets and attaches the providers to the default
// display.
func (s *Style) Apply() error {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return ErrNoDisplay
	}
	s.base.LoadFromString(theme.Base())
	gtk.StyleContextAddProviderForDisplay(display, s.base, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)

	if s.path == "" {
		return nil
	}
	s.load()
	gtk.StyleContextAddProviderForDisplay(display, s.provider, gtk.STYLE_PROVIDER_PRIORITY_USER)
	return nil
}

// load replaces the user sheet. A sheet that cannot be read leaves the
// previous one in place.
func (s *Style) load() {
	css, err := theme.Load(s.path)
	if err != nil {
		s.logger.Warn("failed to load style", "error", err)
		return
	}
	s.provider.LoadFromString(css)
	s.logger.Info("loaded style")
}

// WatchChanges reloads the stylesheet after it changes on disk. Reloads run on
// the scheduler goroutine.
func (s *Style) WatchChanges(ctx context.Context, debounce time.Duration) error {
	if s.watcher != nil || s.path == "" {
		return nil
	}
	w := watch.New(s.path, debounce, s.logger)
	if err := w.Start(ctx, func() { s.sched.Post(s.load) }); err != nil {
		return err
	}
	s.watcher = w
	return nil
}

// Stop stops watching the stylesheet.
func (s *Style) Stop() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Stop(); err != nil {
		s.logger.Warn("failed to stop style watcher", "error", err)
	}
	s.watcher = nil
}
