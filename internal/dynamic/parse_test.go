package dynamic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/script"
)

func newState(t *testing.T) *script.State {
	t.Helper()
	st := script.NewState()
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func eval(t *testing.T, st *script.State, code string) lua.LValue {
	t.Helper()
	v, err := st.EvalString("test", code)
	require.NoError(t, err)
	return v
}

func TestParse_Static(t *testing.T) {
	st := newState(t)

	v, err := Parse(st, lua.LString("hello"), script.ToString)
	require.NoError(t, err)
	assert.Equal(t, KindStatic, v.Kind())

	got, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestParse_StaticTableWithoutDiscriminator(t *testing.T) {
	st := newState(t)

	v, err := Parse(st, eval(t, st, `return { "a", "b" }`), script.ToStringList)
	require.NoError(t, err)
	got, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestParse_StaticMismatch(t *testing.T) {
	st := newState(t)

	_, err := Parse(st, lua.LTrue, script.ToString)
	var ce *script.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "boolean", ce.From)
	assert.Equal(t, "string", ce.To)
	assert.Contains(t, ce.Message, "literal value or a dynamic value descriptor")
}

func TestParse_Interval(t *testing.T) {
	st := newState(t)

	lv := eval(t, st, `
local n = 0
return { __wayglance_dynamic = "interval", interval = 250, callback = function()
	n = n + 1
	return "tick " .. n
end }`)

	v, err := Parse(st, lv, script.ToString)
	require.NoError(t, err)
	assert.Equal(t, KindInterval, v.Kind())
	assert.Equal(t, 250*time.Millisecond, v.Period())

	_, ok := v.Get()
	assert.False(t, ok)

	got, err := v.poll()
	require.NoError(t, err)
	assert.Equal(t, "tick 1", got)
	got, err = v.poll()
	require.NoError(t, err)
	assert.Equal(t, "tick 2", got)
}

func TestParse_Signal(t *testing.T) {
	st := newState(t)

	lv := eval(t, st, `
return { __wayglance_dynamic = "signal", signal = { "a", "b", "a" }, callback = function(p)
	if p == nil then return "none" end
	return p.name
end }`)

	v, err := Parse(st, lv, script.ToString)
	require.NoError(t, err)
	assert.Equal(t, KindSignal, v.Kind())
	assert.Equal(t, []string{"a", "b"}, v.Names())

	got, err := v.react(lua.LNil)
	require.NoError(t, err)
	assert.Equal(t, "none", got)
}

func TestParse_SignalSingleName(t *testing.T) {
	st := newState(t)

	lv := eval(t, st, `return { __wayglance_dynamic = "signal", signal = "hyprland::workspace_changed", callback = function() return 1 end }`)
	v, err := Parse(st, lv, script.ToInt)
	require.NoError(t, err)
	assert.Equal(t, []string{"hyprland::workspace_changed"}, v.Names())
}

func TestParse_DescriptorErrors(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		contains string
	}{
		{
			name:     "unknown kind",
			code:     `return { __wayglance_dynamic = "cron", callback = function() end }`,
			contains: `"interval" or "signal"`,
		},
		{
			name:     "non-string kind",
			code:     `return { __wayglance_dynamic = true, callback = function() end }`,
			contains: `"interval" or "signal"`,
		},
		{
			name:     "missing callback",
			code:     `return { __wayglance_dynamic = "interval", interval = 100 }`,
			contains: `"interval" or "signal"`,
		},
		{
			name:     "callback not a function",
			code:     `return { __wayglance_dynamic = "signal", signal = "x", callback = "nope" }`,
			contains: `"interval" or "signal"`,
		},
		{
			name:     "missing interval",
			code:     `return { __wayglance_dynamic = "interval", callback = function() end }`,
			contains: "interval: error converting Lua nil to integer",
		},
		{
			name:     "fractional interval",
			code:     `return { __wayglance_dynamic = "interval", interval = 1.5, callback = function() end }`,
			contains: "interval: ",
		},
		{
			name:     "zero interval",
			code:     `return { __wayglance_dynamic = "interval", interval = 0, callback = function() end }`,
			contains: "positive number of milliseconds",
		},
		{
			name:     "interval overflows duration",
			code:     `return { __wayglance_dynamic = "interval", interval = 1e13, callback = function() end }`,
			contains: "interval: error converting Lua number to interval (interval must be at most",
		},
		{
			name:     "empty signal list",
			code:     `return { __wayglance_dynamic = "signal", signal = {}, callback = function() end }`,
			contains: "signal: error converting Lua table to signal names (at least one signal name is required",
		},
		{
			name:     "bad signal names",
			code:     `return { __wayglance_dynamic = "signal", signal = 42, callback = function() end }`,
			contains: "signal: error converting Lua number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(t)
			_, err := Parse(st, eval(t, st, tt.code), script.ToString)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)

			var ce *script.ConversionError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestParse_CallbackResultConversion(t *testing.T) {
	st := newState(t)

	lv := eval(t, st, `return { __wayglance_dynamic = "interval", interval = 10, callback = function() return {} end }`)
	v, err := Parse(st, lv, script.ToString)
	require.NoError(t, err, "results are converted when the callback runs")

	_, err = v.poll()
	assert.Error(t, err)
}

func TestParseField(t *testing.T) {
	st := newState(t)
	tbl := eval(t, st, `return { text = "hi", bad = true }`).(*lua.LTable)

	v, err := ParseField(st, tbl, "text", script.ToString)
	require.NoError(t, err)
	got, _ := v.Get()
	assert.Equal(t, "hi", got)

	_, err = ParseField(st, tbl, "bad", script.ToString)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: error converting Lua boolean to string")

	_, err = ParseField(st, tbl, "missing", script.ToString)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing: error converting Lua nil to string")
}

func TestParseOptional(t *testing.T) {
	st := newState(t)
	tbl := eval(t, st, `return { visible = false }`).(*lua.LTable)

	v, ok, err := ParseOptional(st, tbl, "visible", script.ToBool)
	require.NoError(t, err)
	require.True(t, ok)
	got, _ := v.Get()
	assert.False(t, got)

	_, ok, err = ParseOptional(st, tbl, "tooltip", script.ToString)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValue_StringAndYAML(t *testing.T) {
	s := Static("x")
	assert.Equal(t, "x", s.String())
	y, err := s.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "x", y)

	iv := Interval(time.Second, func() (int, error) { return 0, nil })
	assert.Equal(t, "interval(1s)", iv.String())
	y, err = iv.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"interval": "1s"}, y)

	sv := Signal([]string{"a", "b"}, func(lua.LValue) (int, error) { return 0, nil })
	assert.Equal(t, "signal(a, b)", sv.String())
}
