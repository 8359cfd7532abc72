package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "200ms", "1s", "1m30s", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '200ms', '1s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatAuto LogFormat = "auto"
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// ValidLogFormats returns all valid log format values.
func ValidLogFormats() []LogFormat {
	return []LogFormat{LogFormatAuto, LogFormatText, LogFormatJSON}
}

// Settings is the process configuration for wayglance.
// Loaded from ~/.config/wayglance/wayglance.toml
type Settings struct {
	Log      LogSettings      `toml:"log"`
	Events   EventSettings    `toml:"events"`
	Hyprland HyprlandSettings `toml:"hyprland"`
	MPRIS    MPRISSettings    `toml:"mpris"`
	Style    StyleSettings    `toml:"style"`
}

// LogSettings contains logging settings.
type LogSettings struct {
	Level  string    `toml:"level"`  // debug, info, warn, error
	Format LogFormat `toml:"format"` // auto: text on a TTY, json otherwise
}

// EventSettings contains adapter pipeline settings.
type EventSettings struct {
	QueueSize int `toml:"queue_size"` // Buffered messages per adapter
}

// HyprlandSettings contains Hyprland IPC settings.
type HyprlandSettings struct {
	Enabled bool `toml:"enabled"`
}

// MPRISSettings contains media player settings.
type MPRISSettings struct {
	Enabled bool   `toml:"enabled"`
	Player  string `toml:"player"` // Empty follows every player
}

// StyleSettings contains stylesheet settings.
type StyleSettings struct {
	HotReload bool     `toml:"hot_reload"`
	Debounce  Duration `toml:"debounce"` // e.g., "200ms" or 200
}

// DefaultSettings returns Settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Log: LogSettings{
			Level:  "info",
			Format: LogFormatAuto,
		},
		Events: EventSettings{
			QueueSize: 64,
		},
		Hyprland: HyprlandSettings{
			Enabled: true,
		},
		MPRIS: MPRISSettings{
			Enabled: true,
		},
		Style: StyleSettings{
			HotReload: true,
			Debounce:  Duration(200 * time.Millisecond),
		},
	}
}

// SettingsPath returns the path to the settings file.
func SettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wayglance", "wayglance.toml"), nil
}

// LoadSettings loads settings from path, or from SettingsPath when path is
// empty. A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		p, err := SettingsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get settings path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return settings, nil
}

// Validate checks if the settings are valid.
func (s *Settings) Validate() error {
	if _, err := ParseLevel(s.Log.Level); err != nil {
		return err
	}

	validFormat := false
	for _, f := range ValidLogFormats() {
		if s.Log.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid log format %q, must be one of: %v", s.Log.Format, ValidLogFormats())
	}

	if s.Events.QueueSize < 1 || s.Events.QueueSize > 65536 {
		return fmt.Errorf("queue_size must be between 1 and 65536, got %d", s.Events.QueueSize)
	}

	if s.Style.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", s.Style.Debounce.Duration())
	}

	return nil
}

// ParseLevel reads a slog level name such as "debug" or "warn".
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", name)
	}
	return level, nil
}
