package dynamic

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/loop"
	"github.com/jmylchreest/wayglance/internal/script"
	"github.com/jmylchreest/wayglance/internal/signal"
)

func newBinder() (*Binder, *loop.Manual, *signal.Bus) {
	sched := loop.NewManual()
	bus := signal.NewBus()
	return NewBinder(sched, bus, nil), sched, bus
}

func TestBind_StaticAppliesOnce(t *testing.T) {
	b, sched, _ := newBinder()
	var target Lifetime

	var got []string
	err := Static("hello").Bind(b, &target, "text", func(v string) { got = append(got, v) })
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, got, "applied synchronously")

	sched.Advance(time.Hour)
	assert.Equal(t, []string{"hello"}, got)
	assert.Equal(t, 0, sched.Timers())
}

func TestBind_IntervalAppliesInitialPlusTicks(t *testing.T) {
	b, sched, _ := newBinder()
	var target Lifetime

	n := 0
	v := Interval(250*time.Millisecond, func() (int, error) {
		n++
		return n, nil
	})

	var got []int
	require.NoError(t, v.Bind(b, &target, "value", func(x int) { got = append(got, x) }))
	assert.Equal(t, []int{1}, got)

	sched.Advance(249 * time.Millisecond)
	assert.Equal(t, []int{1}, got)

	sched.Advance(time.Millisecond)
	sched.Advance(750 * time.Millisecond)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got, "initial plus one per 250ms tick")
}

func TestBind_IntervalInitialErrorAborts(t *testing.T) {
	b, sched, _ := newBinder()
	var target Lifetime
	boom := errors.New("boom")

	v := Interval(time.Second, func() (string, error) { return "", boom })
	applied := 0
	err := v.Bind(b, &target, "text", func(string) { applied++ })

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "text")
	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, sched.Timers())
}

func TestBind_FailedSiblingReleasesTree(t *testing.T) {
	b, sched, bus := newBinder()
	var root Lifetime

	// Children are chained to the root the way the widget builder chains them.
	first := &Lifetime{}
	root.OnDispose(first.Dispose)
	require.NoError(t, Interval(time.Second, func() (int, error) { return 1, nil }).
		Bind(b, first, "value", func(int) {}))
	require.NoError(t, Signal([]string{"tick"}, func(lua.LValue) (int, error) { return 0, nil }).
		Bind(b, first, "count", func(int) {}))

	second := &Lifetime{}
	root.OnDispose(second.Dispose)
	err := Interval(time.Second, func() (int, error) { return 0, errors.New("boom") }).
		Bind(b, second, "value", func(int) {})
	require.Error(t, err)
	require.Equal(t, 1, sched.Timers())
	require.Equal(t, 1, bus.Count("tick"))

	root.Dispose()
	assert.Equal(t, 0, sched.Timers())
	assert.Equal(t, 0, bus.Count("tick"))
	assert.True(t, first.Disposed())
}

func TestBind_IntervalTickErrorKeepsRunning(t *testing.T) {
	b, sched, _ := newBinder()
	var target Lifetime

	n := 0
	v := Interval(time.Second, func() (int, error) {
		n++
		if n == 2 {
			return 0, errors.New("flaky")
		}
		return n, nil
	})

	var got []int
	require.NoError(t, v.Bind(b, &target, "value", func(x int) { got = append(got, x) }))
	sched.Advance(3 * time.Second)

	assert.Equal(t, []int{1, 3, 4}, got)
}

func TestBind_IntervalDisposeStopsTimer(t *testing.T) {
	b, sched, _ := newBinder()
	var target Lifetime

	polls := 0
	v := Interval(100*time.Millisecond, func() (int, error) {
		polls++
		return polls, nil
	})
	applied := 0
	require.NoError(t, v.Bind(b, &target, "value", func(int) { applied++ }))

	sched.Advance(300 * time.Millisecond)
	assert.Equal(t, 4, applied)

	target.Dispose()
	target.Dispose()
	assert.Equal(t, 0, sched.Timers())

	sched.Advance(time.Second)
	assert.Equal(t, 4, applied)
	assert.Equal(t, 4, polls)
}

func TestBind_IntervalDisposedFromOwnTick(t *testing.T) {
	b, sched, _ := newBinder()
	var target Lifetime

	polls := 0
	v := Interval(100*time.Millisecond, func() (int, error) {
		polls++
		if polls == 2 {
			target.Dispose()
		}
		return polls, nil
	})
	var got []int
	require.NoError(t, v.Bind(b, &target, "value", func(x int) { got = append(got, x) }))

	sched.Advance(time.Second)
	assert.Equal(t, []int{1}, got, "value computed after disposal is not applied")
	assert.Equal(t, 2, polls)
}

func TestBind_SignalTwoNamesShareCallback(t *testing.T) {
	st := newState(t)
	b, _, bus := newBinder()
	var target Lifetime

	lv := eval(t, st, `
calls = 0
return { __wayglance_dynamic = "signal", signal = { "a", "b" }, callback = function(p)
	calls = calls + 1
	if p == nil then return "initial" end
	return p
end }`)
	v, err := Parse(st, lv, script.ToString)
	require.NoError(t, err)

	var got []string
	require.NoError(t, v.Bind(b, &target, "text", func(s string) { got = append(got, s) }))
	assert.Equal(t, []string{"initial"}, got)
	assert.Equal(t, 1, bus.Count("a"))
	assert.Equal(t, 1, bus.Count("b"))

	bus.Emit("a", lua.LString("from a"))
	assert.Equal(t, []string{"initial", "from a"}, got)
	bus.Emit("b", lua.LString("from b"))
	assert.Equal(t, []string{"initial", "from a", "from b"}, got)
	bus.Emit("c", lua.LString("ignored"))

	assert.Equal(t, lua.LNumber(3), st.GetGlobal("calls"))
}

func TestBind_SignalInitialErrorIsLogged(t *testing.T) {
	b, _, bus := newBinder()
	var target Lifetime

	v := Signal([]string{"x"}, func(p lua.LValue) (string, error) {
		if p == lua.LNil {
			return "", errors.New("needs payload")
		}
		return p.String(), nil
	})

	var got []string
	require.NoError(t, v.Bind(b, &target, "text", func(s string) { got = append(got, s) }))
	assert.Empty(t, got)

	bus.Emit("x", lua.LString("ok"))
	assert.Equal(t, []string{"ok"}, got)
}

func TestBind_SignalErrorKeepsSubscription(t *testing.T) {
	b, _, bus := newBinder()
	var target Lifetime

	v := Signal([]string{"x"}, func(p lua.LValue) (string, error) {
		if p == lua.LFalse {
			return "", errors.New("bad")
		}
		return p.String(), nil
	})
	var got []string
	require.NoError(t, v.Bind(b, &target, "text", func(s string) { got = append(got, s) }))

	bus.Emit("x", lua.LFalse)
	bus.Emit("x", lua.LString("after"))
	assert.Equal(t, []string{"nil", "after"}, got)
}

func TestBind_SignalDisposeUnsubscribes(t *testing.T) {
	b, _, bus := newBinder()
	var target Lifetime

	calls := 0
	v := Signal([]string{"a", "b"}, func(lua.LValue) (int, error) {
		calls++
		return calls, nil
	})
	applied := 0
	require.NoError(t, v.Bind(b, &target, "value", func(int) { applied++ }))
	bus.Emit("a", lua.LNil)
	require.Equal(t, 2, applied)

	target.Dispose()
	assert.Equal(t, 0, bus.Count("a"))
	assert.Equal(t, 0, bus.Count("b"))

	bus.Emit("a", lua.LNil)
	bus.Emit("b", lua.LNil)
	assert.Equal(t, 2, applied)
	assert.Equal(t, 2, calls)
}

func TestBind_SignalDisposedDuringEmit(t *testing.T) {
	b, _, bus := newBinder()
	var first, second Lifetime

	// The first binding destroys the second while the bus is iterating its
	// snapshot, which still holds the second binding's listener.
	killer := Signal([]string{"x"}, func(p lua.LValue) (int, error) {
		if p != lua.LNil {
			second.Dispose()
		}
		return 0, nil
	})
	require.NoError(t, killer.Bind(b, &first, "a", func(int) {}))

	calls := 0
	victim := Signal([]string{"x"}, func(lua.LValue) (int, error) {
		calls++
		return calls, nil
	})
	applied := 0
	require.NoError(t, victim.Bind(b, &second, "b", func(int) { applied++ }))
	require.Equal(t, 1, calls)

	bus.Emit("x", lua.LTrue)
	assert.Equal(t, 1, calls, "callback does not run after disposal")
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, bus.Count("x"))
}

func TestBind_SignalDisposedFromOwnCallback(t *testing.T) {
	b, _, bus := newBinder()
	var target Lifetime

	v := Signal([]string{"a", "b"}, func(p lua.LValue) (int, error) {
		if p != lua.LNil {
			target.Dispose()
		}
		return 1, nil
	})
	applied := 0
	require.NoError(t, v.Bind(b, &target, "value", func(int) { applied++ }))

	bus.Emit("a", lua.LTrue)
	assert.Equal(t, 1, applied, "only the initial value was applied")
	assert.Equal(t, 0, bus.Count("a"))
	assert.Equal(t, 0, bus.Count("b"))
}

func TestBind_AlreadyDisposedTarget(t *testing.T) {
	b, sched, bus := newBinder()
	var target Lifetime
	target.Dispose()

	iv := Interval(time.Second, func() (int, error) { return 1, nil })
	require.NoError(t, iv.Bind(b, &target, "a", func(int) {}))
	assert.Equal(t, 0, sched.Timers())

	sv := Signal([]string{"x"}, func(lua.LValue) (int, error) { return 1, nil })
	require.NoError(t, sv.Bind(b, &target, "b", func(int) {}))
	assert.Equal(t, 0, bus.Count("x"))
}
