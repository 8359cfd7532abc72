// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/wayglance/internal/config"
)

// EnvLevel names the environment variable that overrides the settings level.
const EnvLevel = "WAYGLANCE_LOG"

// New returns a logger writing to w. LogFormatAuto picks text when w is a
// terminal and JSON otherwise.
func New(w io.Writer, format config.LogFormat, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	if format == config.LogFormatAuto {
		format = config.LogFormatJSON
		if IsTerminal(w) {
			format = config.LogFormatText
		}
	}

	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Level is a pflag.Value holding a slog level. The zero value is unset.
type Level struct {
	level slog.Level
	set   bool
}

var _ pflag.Value = (*Level)(nil)

func (l *Level) String() string {
	if !l.set {
		return ""
	}
	return l.level.String()
}

// Set implements pflag.Value.
func (l *Level) Set(s string) error {
	level, err := config.ParseLevel(s)
	if err != nil {
		return err
	}
	l.level = level
	l.set = true
	return nil
}

// Type implements pflag.Value.
func (l *Level) Type() string {
	return "level"
}

// Resolve picks the level from, in order: the flag, the environment
// variable, then the settings.
func (l *Level) Resolve(getenv func(string) string, settings *config.Settings) (slog.Level, error) {
	if l.set {
		return l.level, nil
	}
	if env := getenv(EnvLevel); env != "" {
		return config.ParseLevel(env)
	}
	return config.ParseLevel(settings.Log.Level)
}
