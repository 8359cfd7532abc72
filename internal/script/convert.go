package script

import (
	"math"

	lua "github.com/yuin/gopher-lua"
)

// TypeName returns the Lua type name of lv ("nil" for a Go nil).
func TypeName(lv lua.LValue) string {
	if lv == nil {
		return lua.LTNil.String()
	}
	return lv.Type().String()
}

func mismatch(lv lua.LValue, to string) error {
	return &ConversionError{From: TypeName(lv), To: to}
}

// IsNil reports whether lv is absent.
func IsNil(lv lua.LValue) bool {
	return lv == nil || lv == lua.LNil
}

// ToString accepts strings and numbers, as Lua's own string coercion does.
func ToString(lv lua.LValue) (string, error) {
	switch v := lv.(type) {
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		return v.String(), nil
	}
	return "", mismatch(lv, "string")
}

// ToInt accepts numbers with no fractional part.
func ToInt(lv lua.LValue) (int, error) {
	n, ok := lv.(lua.LNumber)
	if !ok {
		return 0, mismatch(lv, "integer")
	}
	f := float64(n)
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, &ConversionError{From: "number", To: "integer", Message: "number has no integer representation"}
	}
	return int(f), nil
}

// ToFloat accepts any number.
func ToFloat(lv lua.LValue) (float64, error) {
	n, ok := lv.(lua.LNumber)
	if !ok {
		return 0, mismatch(lv, "number")
	}
	return float64(n), nil
}

// ToBool accepts booleans only; nil is not false here.
func ToBool(lv lua.LValue) (bool, error) {
	b, ok := lv.(lua.LBool)
	if !ok {
		return false, mismatch(lv, "boolean")
	}
	return bool(b), nil
}

// ToTable accepts tables.
func ToTable(lv lua.LValue) (*lua.LTable, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, mismatch(lv, "table")
	}
	return t, nil
}

// ToFunction accepts functions.
func ToFunction(lv lua.LValue) (*lua.LFunction, error) {
	fn, ok := lv.(*lua.LFunction)
	if !ok {
		return nil, mismatch(lv, "function")
	}
	return fn, nil
}

// ToSequence returns the array part of a table in order. Elements are
// converted with convert; errors carry the 1-based index.
func ToSequence[T any](lv lua.LValue, convert func(lua.LValue) (T, error)) ([]T, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, mismatch(lv, "sequence")
	}
	n := t.Len()
	out := make([]T, 0, n)
	for i := 1; i <= n; i++ {
		v, err := convert(t.RawGetInt(i))
		if err != nil {
			return nil, Index(i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ToStringList accepts a sequence of strings.
func ToStringList(lv lua.LValue) ([]string, error) {
	return ToSequence(lv, ToString)
}

// ToStringOrList accepts a single string or a sequence of strings.
func ToStringOrList(lv lua.LValue) ([]string, error) {
	if s, ok := lv.(lua.LString); ok {
		return []string{string(s)}, nil
	}
	if _, ok := lv.(*lua.LTable); !ok {
		return nil, mismatch(lv, "string or sequence of strings")
	}
	return ToStringList(lv)
}

// ToValue passes the Lua value through unchanged.
func ToValue(lv lua.LValue) (lua.LValue, error) {
	if lv == nil {
		return lua.LNil, nil
	}
	return lv, nil
}
