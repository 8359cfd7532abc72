// Package api installs the wayglance global that configuration scripts use.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/script"
	"github.com/jmylchreest/wayglance/internal/signal"
	"github.com/jmylchreest/wayglance/internal/source/hyprland"
	"github.com/jmylchreest/wayglance/internal/source/mpris"
	"github.com/jmylchreest/wayglance/internal/sysinfo"
)

// GlobalName is the name of the Lua table installed by Install.
const GlobalName = "wayglance"

// callTimeout bounds backend calls made from Lua on the UI goroutine.
const callTimeout = 2 * time.Second

//go:embed prelude.lua
var prelude string

// Hyprland is the command client used by wayglance.hyprland.
type Hyprland interface {
	Dispatch(ctx context.Context, cmd string) error
	Query(ctx context.Context, cmd string) (any, error)
}

// Player is the transport controller used by wayglance.mpris.
type Player interface {
	PlayPause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
}

// Options selects the backends exposed to scripts. Nil backends make the
// corresponding functions raise a Lua error.
type Options struct {
	Bus      *signal.Bus
	Logger   *slog.Logger
	Hyprland Hyprland
	Player   Player
	System   *sysinfo.Sampler
}

type api struct {
	opts   Options
	bridge *script.Bridge
	logger *slog.Logger
}

// Install creates the wayglance global in st.
func Install(st *script.State, opts Options) error {
	if opts.Bus == nil {
		return fmt.Errorf("api: a signal bus is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = st.Logger()
	}
	a := &api{
		opts:   opts,
		bridge: script.NewBridge(st.L),
		logger: logger.With("component", "lua"),
	}

	L := st.L
	root := L.NewTable()
	L.SetField(root, "emitSignal", L.NewFunction(a.emitSignal))
	L.SetField(root, "log", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"debug": a.log(slog.LevelDebug),
		"info":  a.log(slog.LevelInfo),
		"warn":  a.log(slog.LevelWarn),
		"error": a.log(slog.LevelError),
	}))
	L.SetField(root, "hyprland", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"dispatch": a.hyprDispatch,
		"query":    a.hyprQuery,
	}))
	L.SetField(root, "mpris", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"play_pause": a.player(Player.PlayPause),
		"next":       a.player(Player.Next),
		"previous":   a.player(Player.Previous),
	}))
	L.SetField(root, "system", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"cpu":     a.sample(func(ctx context.Context, _ *lua.LState) (any, error) { return a.opts.System.CPU(ctx) }),
		"memory":  a.sample(func(ctx context.Context, _ *lua.LState) (any, error) { return a.opts.System.Memory(ctx) }),
		"load":    a.sample(func(ctx context.Context, _ *lua.LState) (any, error) { return a.opts.System.Load(ctx) }),
		"uptime":  a.sample(func(ctx context.Context, _ *lua.LState) (any, error) { return a.opts.System.Uptime(ctx) }),
		"disk":    a.sample(func(ctx context.Context, L *lua.LState) (any, error) { return a.opts.System.Disk(ctx, L.OptString(1, "/")) }),
		"network": a.sample(func(ctx context.Context, L *lua.LState) (any, error) { return a.opts.System.Network(ctx, L.CheckString(1)) }),
	}))

	fn, err := L.LoadString(prelude)
	if err != nil {
		return fmt.Errorf("api: loading prelude: %w", err)
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, root); err != nil {
		return fmt.Errorf("api: running prelude: %w", err)
	}

	L.SetGlobal(GlobalName, root)
	return nil
}

// emitSignal(name, payload?) publishes on the bus.
func (a *api) emitSignal(L *lua.LState) int {
	name := L.CheckString(1)
	payload := L.Get(2)
	a.opts.Bus.Emit(name, payload)
	return 0
}

// log(msg, key, value, ...) logs through slog.
func (a *api) log(level slog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)
		top := L.GetTop()
		args := make([]any, 0, top-1)
		for i := 2; i <= top; i++ {
			args = append(args, a.bridge.ToGoValue(L.Get(i)))
		}
		a.logger.Log(context.Background(), level, msg, args...)
		return 0
	}
}

func (a *api) hyprDispatch(L *lua.LState) int {
	cmd := L.CheckString(1)
	if a.opts.Hyprland == nil {
		L.RaiseError("hyprland is not available")
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := a.opts.Hyprland.Dispatch(ctx, cmd); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (a *api) hyprQuery(L *lua.LState) int {
	cmd := L.CheckString(1)
	if a.opts.Hyprland == nil {
		L.RaiseError("hyprland is not available")
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	v, err := a.opts.Hyprland.Query(ctx, cmd)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(a.bridge.ToLuaValue(v))
	return 1
}

func (a *api) player(cmd func(Player, context.Context) error) lua.LGFunction {
	return func(L *lua.LState) int {
		if a.opts.Player == nil {
			L.RaiseError("mpris is not available")
			return 0
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if err := cmd(a.opts.Player, ctx); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}
}

func (a *api) sample(fn func(context.Context, *lua.LState) (any, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		if a.opts.System == nil {
			L.RaiseError("system metrics are not available")
			return 0
		}
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		v, err := fn(ctx, L)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(a.bridge.ToLuaValue(v))
		return 1
	}
}

// HyprlandClient adapts a hyprland.Client so query replies decode to plain
// Go values.
type HyprlandClient struct {
	*hyprland.Client
}

// Query implements Hyprland.
func (c HyprlandClient) Query(ctx context.Context, cmd string) (any, error) {
	res, err := c.Client.Query(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return res.Value(), nil
}

var _ Player = (*mpris.Controller)(nil)
