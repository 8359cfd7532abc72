// Package config loads the Lua layout and the TOML process settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/script"
	"github.com/jmylchreest/wayglance/internal/widget"
)

// AppIDPrefix is prepended to the slug of the layout title.
const AppIDPrefix = "io.github.jmylchreest.wayglance"

// Layer is the layer-shell layer a window is placed on.
type Layer int

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

var layerNames = []string{"background", "bottom", "top", "overlay"}

func (l Layer) String() string {
	if l >= 0 && int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLayer reads a layer name, ignoring case.
func ParseLayer(lv lua.LValue) (Layer, error) {
	s, ok := lv.(lua.LString)
	if !ok {
		return 0, &script.ConversionError{From: script.TypeName(lv), To: "Layer", Message: "expected a string"}
	}
	if i := slices.Index(layerNames, strings.ToLower(string(s))); i >= 0 {
		return Layer(i), nil
	}
	return 0, &script.ConversionError{
		From:    "string",
		To:      "Layer",
		Message: fmt.Sprintf("invalid layer %q, expected one of %s", string(s), strings.Join(layerNames, ", ")),
	}
}

// Anchors are the monitor edges a window sticks to.
type Anchors struct {
	Top    bool `yaml:"top"`
	Right  bool `yaml:"right"`
	Bottom bool `yaml:"bottom"`
	Left   bool `yaml:"left"`
}

// Margins are per-edge offsets in pixels.
type Margins struct {
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
}

// Config is the layout returned by the Lua configuration file.
type Config struct {
	Title         string        `yaml:"title"`
	Style         string        `yaml:"style,omitempty"` // Resolved against Dir unless absolute
	Layer         Layer         `yaml:"layer"`
	ExclusiveZone bool          `yaml:"exclusive_zone"`
	Anchors       *Anchors      `yaml:"anchors,omitempty"`
	Margins       *Margins      `yaml:"margins,omitempty"`
	Monitors      []string      `yaml:"monitors,omitempty"` // Connector names, empty = all
	Child         widget.Widget `yaml:"child"`

	// Dir is the directory of the configuration file.
	Dir string `yaml:"-"`
}

// DefaultPath returns the layout path used when none is given.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wayglance", "config.lua"), nil
}

// Load runs the configuration file at path in st and parses its result. The
// file may return the layout table or a function producing it. Modules next
// to the file can be loaded with require.
func Load(st *script.State, path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := st.AddSearchDir(dir); err != nil {
		return nil, err
	}

	lv, err := st.EvalFile(abs)
	if err != nil {
		return nil, err
	}

	if fn, ok := lv.(*lua.LFunction); ok {
		if lv, err = st.NewFunc(fn).Call(); err != nil {
			return nil, fmt.Errorf("calling config function: %w", err)
		}
	}

	cfg, err := Parse(st, lv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Dir = dir
	return cfg, nil
}

// Parse reads a layout table.
func Parse(st *script.State, lv lua.LValue) (*Config, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return nil, &script.ConversionError{
			From:    script.TypeName(lv),
			To:      "Config",
			Message: "expected a table or a function returning one",
		}
	}

	cfg := &Config{}
	var err error

	if cfg.Title, err = script.ToString(tbl.RawGetString("title")); err != nil {
		return nil, script.Field("title", err)
	}

	if lv := tbl.RawGetString("style"); !script.IsNil(lv) {
		if cfg.Style, err = script.ToString(lv); err != nil {
			return nil, script.Field("style", err)
		}
	}

	if cfg.Layer, err = ParseLayer(tbl.RawGetString("layer")); err != nil {
		return nil, script.Field("layer", err)
	}

	if lv := tbl.RawGetString("exclusive_zone"); !script.IsNil(lv) {
		if cfg.ExclusiveZone, err = script.ToBool(lv); err != nil {
			return nil, script.Field("exclusive_zone", err)
		}
	}

	if lv := tbl.RawGetString("anchors"); !script.IsNil(lv) {
		a, err := parseAnchors(lv)
		if err != nil {
			return nil, script.Field("anchors", err)
		}
		cfg.Anchors = a
	}

	if lv := tbl.RawGetString("margins"); !script.IsNil(lv) {
		m, err := parseMargins(lv)
		if err != nil {
			return nil, script.Field("margins", err)
		}
		cfg.Margins = m
	}

	if lv := tbl.RawGetString("monitors"); !script.IsNil(lv) {
		if cfg.Monitors, err = script.ToStringList(lv); err != nil {
			return nil, script.Field("monitors", err)
		}
	}

	if cfg.Child, err = widget.ParseField(st, tbl, "child"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseAnchors(lv lua.LValue) (*Anchors, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return nil, &script.ConversionError{From: script.TypeName(lv), To: "Anchors", Message: "expected a table"}
	}
	a := &Anchors{}
	for _, e := range []struct {
		name string
		dst  *bool
	}{{"top", &a.Top}, {"right", &a.Right}, {"bottom", &a.Bottom}, {"left", &a.Left}} {
		if lv := tbl.RawGetString(e.name); !script.IsNil(lv) {
			b, err := script.ToBool(lv)
			if err != nil {
				return nil, script.Field(e.name, err)
			}
			*e.dst = b
		}
	}
	return a, nil
}

func parseMargins(lv lua.LValue) (*Margins, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return nil, &script.ConversionError{From: script.TypeName(lv), To: "Margins", Message: "expected a table"}
	}
	m := &Margins{}
	for _, e := range []struct {
		name string
		dst  *int
	}{{"top", &m.Top}, {"right", &m.Right}, {"bottom", &m.Bottom}, {"left", &m.Left}} {
		if lv := tbl.RawGetString(e.name); !script.IsNil(lv) {
			n, err := script.ToInt(lv)
			if err != nil {
				return nil, script.Field(e.name, err)
			}
			*e.dst = n
		}
	}
	return m, nil
}

// StylePath returns the stylesheet path, or "" when none is configured.
func (c *Config) StylePath() string {
	if c.Style == "" || filepath.IsAbs(c.Style) {
		return c.Style
	}
	return filepath.Join(c.Dir, c.Style)
}

// AppID returns the application ID derived from the title, e.g.
// "io.github.jmylchreest.wayglance.my-bar" for "My Bar".
func (c *Config) AppID() string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(c.Title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	slug := b.String()
	if slug == "" {
		return AppIDPrefix
	}
	if slug[0] >= '0' && slug[0] <= '9' {
		slug = "_" + slug
	}
	return AppIDPrefix + "." + slug
}

// WantsMonitor reports whether a window should open on the monitor with the
// given connector name.
func (c *Config) WantsMonitor(connector string) bool {
	return len(c.Monitors) == 0 || slices.Contains(c.Monitors, connector)
}
