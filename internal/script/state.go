package script

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// State wraps gopher-lua for configuration evaluation and callbacks.
//
// All methods must be called from the goroutine that owns the UI scheduler.
type State struct {
	L *lua.LState

	logger *slog.Logger
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithLogger sets the logger used for Lua-side diagnostics.
func WithLogger(logger *slog.Logger) StateOption {
	return func(s *State) {
		s.logger = logger
	}
}

// NewState creates a Lua state with the standard libraries opened.
func NewState(opts ...StateOption) *State {
	s := &State{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openLibraries(L)
	s.L = L
	return s
}

// openLibraries opens the libraries a configuration script may use. The debug
// library stays closed.
func openLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.OsLibName, lua.OpenOs},
		{lua.IoLibName, lua.OpenIo},
		{lua.CoroutineLibName, lua.OpenCoroutine},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// AddSearchDir puts dir in front of package.path so require finds modules
// next to the configuration file.
func (s *State) AddSearchDir(dir string) error {
	if s.closed {
		return ErrStateClosed
	}
	pkg, ok := s.L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return fmt.Errorf("package library not loaded")
	}
	current := lua.LVAsString(pkg.RawGetString("path"))
	entries := []string{
		filepath.Join(dir, "?.lua"),
		filepath.Join(dir, "?", "init.lua"),
	}
	if current != "" {
		entries = append(entries, current)
	}
	pkg.RawSetString("path", lua.LString(strings.Join(entries, ";")))
	return nil
}

// EvalFile runs the chunk in path and returns its first result.
func (s *State) EvalFile(path string) (lua.LValue, error) {
	if s.closed {
		return lua.LNil, ErrStateClosed
	}
	fn, err := s.L.LoadFile(path)
	if err != nil {
		return lua.LNil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s.call(fn)
}

// EvalString runs code as a chunk called name and returns its first result.
func (s *State) EvalString(name, code string) (lua.LValue, error) {
	if s.closed {
		return lua.LNil, ErrStateClosed
	}
	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return lua.LNil, fmt.Errorf("loading %s: %w", name, err)
	}
	return s.call(fn)
}

// DoString executes code for its side effects.
func (s *State) DoString(code string) error {
	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// call invokes fn in protected mode and returns its first result, or LNil.
func (s *State) call(fn *lua.LFunction, args ...lua.LValue) (ret lua.LValue, err error) {
	ret = lua.LNil
	err = s.doWithRecovery(func() error {
		if err := s.L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...); err != nil {
			return err
		}
		ret = s.L.Get(-1)
		s.L.Pop(1)
		return nil
	})
	return ret, err
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// NewFunc wraps a Lua function so Go code can call it later.
func (s *State) NewFunc(fn *lua.LFunction) *Func {
	return &Func{state: s, fn: fn}
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Logger returns the logger the state was created with.
func (s *State) Logger() *slog.Logger {
	return s.logger
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}

// Close releases the Lua state. Later calls report ErrStateClosed.
func (s *State) Close() error {
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// Func is a shared handle to a Lua function. Every binding derived from one
// dynamic value holds the same *Func.
type Func struct {
	state *State
	fn    *lua.LFunction
}

// Call invokes the function and returns its first result.
func (f *Func) Call(args ...lua.LValue) (lua.LValue, error) {
	if f.state.closed {
		return lua.LNil, ErrStateClosed
	}
	return f.state.call(f.fn, args...)
}

// Value returns the wrapped Lua function.
func (f *Func) Value() *lua.LFunction {
	return f.fn
}

// State returns the state the function belongs to.
func (f *Func) State() *State {
	return f.state
}
