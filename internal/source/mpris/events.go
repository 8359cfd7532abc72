package mpris

import (
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	lua "github.com/yuin/gopher-lua"
)

const (
	KindPlaybackStatus = "playback_status"
	KindMetadata       = "metadata"
)

// Kinds lists every suffix the listener emits.
var Kinds = []string{KindPlaybackStatus, KindMetadata}

// PlaybackStatus is the payload of mpris::playback_status.
type PlaybackStatus struct {
	Player string
	Status string // Playing, Paused or Stopped
}

func (p PlaybackStatus) ToLua(L *lua.LState) (lua.LValue, error) {
	t := L.CreateTable(0, 2)
	t.RawSetString("player", lua.LString(p.Player))
	t.RawSetString("status", lua.LString(p.Status))
	return t, nil
}

// Metadata is the payload of mpris::metadata.
type Metadata struct {
	Player string
	Title  string
	Artist []string
	Album  string
	ArtURL string
	Length time.Duration
}

func (m Metadata) ToLua(L *lua.LState) (lua.LValue, error) {
	t := L.CreateTable(0, 6)
	t.RawSetString("player", lua.LString(m.Player))
	t.RawSetString("title", lua.LString(m.Title))
	t.RawSetString("artist", lua.LString(strings.Join(m.Artist, ", ")))
	t.RawSetString("album", lua.LString(m.Album))
	t.RawSetString("art_url", lua.LString(m.ArtURL))
	t.RawSetString("length", lua.LNumber(int64(m.Length/time.Second)))
	return t, nil
}

// DecodeMetadata reads the xesam/mpris fields wayglance exposes. Missing or
// mistyped entries are left empty.
func DecodeMetadata(player string, md map[string]dbus.Variant) Metadata {
	m := Metadata{Player: player}
	if v, ok := md["xesam:title"].Value().(string); ok {
		m.Title = v
	}
	switch v := md["xesam:artist"].Value().(type) {
	case []string:
		m.Artist = v
	case string:
		m.Artist = []string{v}
	}
	if v, ok := md["xesam:album"].Value().(string); ok {
		m.Album = v
	}
	if v, ok := md["mpris:artUrl"].Value().(string); ok {
		m.ArtURL = v
	}
	// mpris:length is in microseconds; players disagree on signedness.
	switch v := md["mpris:length"].Value().(type) {
	case int64:
		m.Length = time.Duration(v) * time.Microsecond
	case uint64:
		m.Length = time.Duration(v) * time.Microsecond
	case int32:
		m.Length = time.Duration(v) * time.Microsecond
	}
	return m
}
