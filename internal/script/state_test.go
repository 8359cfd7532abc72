package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s := NewState()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestState_EvalString(t *testing.T) {
	s := newTestState(t)

	v, err := s.EvalString("test", `return 1 + 41`)
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), v)

	v, err = s.EvalString("empty", `local x = 1`)
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, v)
}

func TestState_EvalStringErrors(t *testing.T) {
	s := newTestState(t)

	_, err := s.EvalString("syntax", `return (`)
	assert.Error(t, err)

	_, err = s.EvalString("runtime", `error("boom")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestState_DebugLibraryClosed(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, lua.LNil, s.GetGlobal("debug"))
	assert.NotEqual(t, lua.LNil, s.GetGlobal("string"))
	assert.NotEqual(t, lua.LNil, s.GetGlobal("os"))
}

func TestState_RequireFromSearchDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helpers.lua"), []byte(`return { answer = 42 }`), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "widgets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widgets", "init.lua"), []byte(`return "widgets"`), 0o600))

	main := filepath.Join(dir, "main.lua")
	require.NoError(t, os.WriteFile(main, []byte(`
local h = require("helpers")
local w = require("widgets")
return h.answer .. w
`), 0o600))

	s := newTestState(t)
	require.NoError(t, s.AddSearchDir(dir))

	v, err := s.EvalFile(main)
	require.NoError(t, err)
	assert.Equal(t, lua.LString("42widgets"), v)
}

func TestState_EvalFileMissing(t *testing.T) {
	s := newTestState(t)
	_, err := s.EvalFile(filepath.Join(t.TempDir(), "nope.lua"))
	assert.Error(t, err)
}

func TestFunc_Call(t *testing.T) {
	s := newTestState(t)

	v, err := s.EvalString("fn", `return function(x) return (x or 0) * 2 end`)
	require.NoError(t, err)
	fn := s.NewFunc(v.(*lua.LFunction))

	got, err := fn.Call(lua.LNumber(21))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), got)

	got, err = fn.Call()
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(0), got)

	// The stack is left balanced.
	assert.Equal(t, 0, s.L.GetTop())
}

func TestFunc_CallError(t *testing.T) {
	s := newTestState(t)

	v, err := s.EvalString("fn", `return function() error("nope") end`)
	require.NoError(t, err)
	fn := s.NewFunc(v.(*lua.LFunction))

	_, err = fn.Call()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.Equal(t, 0, s.L.GetTop())
}

func TestFunc_NestedCalls(t *testing.T) {
	s := newTestState(t)

	var inner *Func
	s.L.SetGlobal("callInner", s.L.NewFunction(func(L *lua.LState) int {
		v, err := inner.Call(L.Get(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
		L.Push(v)
		return 1
	}))

	v, err := s.EvalString("inner", `return function(x) return x + 1 end`)
	require.NoError(t, err)
	inner = s.NewFunc(v.(*lua.LFunction))

	v, err = s.EvalString("outer", `return function(x) return callInner(x) * 10 end`)
	require.NoError(t, err)
	outer := s.NewFunc(v.(*lua.LFunction))

	got, err := outer.Call(lua.LNumber(1))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(20), got)
}

func TestState_Closed(t *testing.T) {
	s := NewState()
	v, err := s.EvalString("fn", `return function() return 1 end`)
	require.NoError(t, err)
	fn := s.NewFunc(v.(*lua.LFunction))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, s.IsClosed())

	_, err = s.EvalString("x", `return 1`)
	assert.ErrorIs(t, err, ErrStateClosed)
	_, err = fn.Call()
	assert.ErrorIs(t, err, ErrStateClosed)
}
