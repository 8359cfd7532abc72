package dynamic

import (
	"fmt"
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/script"
)

// Discriminator is the table field that marks a dynamic value descriptor. Its
// value names the kind.
const Discriminator = "__wayglance_dynamic"

const kindsMessage = `expected a dynamic value of kind "interval" or "signal" with a callback function`

// maxIntervalMillis is the longest interval a time.Duration can hold.
const maxIntervalMillis = math.MaxInt64 / int64(time.Millisecond)

// Parse reads a Value from lv. Callback results are converted with convert on
// every evaluation.
func Parse[T any](st *script.State, lv lua.LValue, convert func(lua.LValue) (T, error)) (Value[T], error) {
	if tbl, ok := lv.(*lua.LTable); ok {
		if tag := tbl.RawGetString(Discriminator); tag != lua.LNil {
			return parseDescriptor(st, tbl, tag, convert)
		}
	}

	v, err := convert(lv)
	if err != nil {
		return Value[T]{}, staticError[T](lv, err)
	}
	return Static(v), nil
}

func staticError[T any](lv lua.LValue, err error) error {
	to := fmt.Sprintf("%T", *new(T))
	if ce, ok := err.(*script.ConversionError); ok {
		to = ce.To
		if ce.Message != "" {
			return &script.ConversionError{
				From:    script.TypeName(lv),
				To:      to,
				Message: "expected a literal value or a dynamic value descriptor: " + ce.Message,
			}
		}
		return &script.ConversionError{
			From:    script.TypeName(lv),
			To:      to,
			Message: "expected a literal value or a dynamic value descriptor",
		}
	}
	// Nested errors keep their field path.
	return err
}

func parseDescriptor[T any](st *script.State, tbl *lua.LTable, tag lua.LValue, convert func(lua.LValue) (T, error)) (Value[T], error) {
	kind, ok := tag.(lua.LString)
	if !ok {
		return Value[T]{}, &script.ConversionError{From: "table", To: "dynamic value", Message: kindsMessage}
	}

	fn, ok := tbl.RawGetString("callback").(*lua.LFunction)
	if !ok {
		return Value[T]{}, &script.ConversionError{From: "table", To: "dynamic value", Message: kindsMessage}
	}
	callback := st.NewFunc(fn)

	switch string(kind) {
	case "interval":
		ms, err := script.ToInt(tbl.RawGetString("interval"))
		if err != nil {
			return Value[T]{}, script.Field("interval", err)
		}
		if ms <= 0 {
			return Value[T]{}, script.Field("interval", &script.ConversionError{
				From:    "number",
				To:      "interval",
				Message: "interval must be a positive number of milliseconds",
			})
		}
		if int64(ms) > maxIntervalMillis {
			return Value[T]{}, script.Field("interval", &script.ConversionError{
				From:    "number",
				To:      "interval",
				Message: fmt.Sprintf("interval must be at most %d milliseconds", maxIntervalMillis),
			})
		}
		return Interval(time.Duration(ms)*time.Millisecond, func() (T, error) {
			ret, err := callback.Call()
			if err != nil {
				var zero T
				return zero, err
			}
			return convert(ret)
		}), nil

	case "signal":
		names, err := script.ToStringOrList(tbl.RawGetString("signal"))
		if err != nil {
			return Value[T]{}, script.Field("signal", err)
		}
		if len(names) == 0 {
			return Value[T]{}, script.Field("signal", &script.ConversionError{
				From:    "table",
				To:      "signal names",
				Message: "at least one signal name is required",
			})
		}
		return Signal(names, func(payload lua.LValue) (T, error) {
			ret, err := callback.Call(payload)
			if err != nil {
				var zero T
				return zero, err
			}
			return convert(ret)
		}), nil

	default:
		return Value[T]{}, &script.ConversionError{From: "table", To: "dynamic value", Message: kindsMessage}
	}
}

// ParseField reads the named field of tbl. Errors carry the field name.
func ParseField[T any](st *script.State, tbl *lua.LTable, name string, convert func(lua.LValue) (T, error)) (Value[T], error) {
	v, err := Parse(st, tbl.RawGetString(name), convert)
	if err != nil {
		return Value[T]{}, script.Field(name, err)
	}
	return v, nil
}

// ParseOptional is ParseField for fields that may be absent. ok is false when
// the field is nil.
func ParseOptional[T any](st *script.State, tbl *lua.LTable, name string, convert func(lua.LValue) (T, error)) (v Value[T], ok bool, err error) {
	if script.IsNil(tbl.RawGetString(name)) {
		return Value[T]{}, false, nil
	}
	v, err = ParseField(st, tbl, name, convert)
	if err != nil {
		return Value[T]{}, false, err
	}
	return v, true, nil
}
