package dynamic

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Kind identifies the active variant of a Value.
type Kind int

const (
	KindStatic Kind = iota
	KindInterval
	KindSignal
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindInterval:
		return "interval"
	case KindSignal:
		return "signal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a property value that is fixed, polled or driven by signals.
// The zero Value is Static with T's zero value.
type Value[T any] struct {
	kind Kind

	static T

	poll   func() (T, error)
	period time.Duration

	react func(payload lua.LValue) (T, error)
	names []string
}

// Static returns a Value that always holds v.
func Static[T any](v T) Value[T] {
	return Value[T]{kind: KindStatic, static: v}
}

// Interval returns a Value recomputed by poll every period.
func Interval[T any](period time.Duration, poll func() (T, error)) Value[T] {
	return Value[T]{kind: KindInterval, poll: poll, period: period}
}

// Signal returns a Value recomputed by react whenever one of names is
// emitted. Names keep their first-seen order; duplicates are dropped.
func Signal[T any](names []string, react func(payload lua.LValue) (T, error)) Value[T] {
	return Value[T]{kind: KindSignal, react: react, names: normalizeNames(names)}
}

func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Kind returns the active variant.
func (v Value[T]) Kind() Kind {
	return v.kind
}

// Get returns the constant of a Static value.
func (v Value[T]) Get() (T, bool) {
	if v.kind != KindStatic {
		var zero T
		return zero, false
	}
	return v.static, true
}

// Period returns the polling period of an Interval value.
func (v Value[T]) Period() time.Duration {
	return v.period
}

// Names returns the signal names of a Signal value.
func (v Value[T]) Names() []string {
	return append([]string(nil), v.names...)
}

func (v Value[T]) String() string {
	switch v.kind {
	case KindInterval:
		return fmt.Sprintf("interval(%s)", v.period)
	case KindSignal:
		return fmt.Sprintf("signal(%s)", strings.Join(v.names, ", "))
	default:
		return fmt.Sprintf("%v", v.static)
	}
}

// MarshalYAML renders a Static value as itself and dynamic values as a short
// description of what drives them.
func (v Value[T]) MarshalYAML() (any, error) {
	switch v.kind {
	case KindInterval:
		return map[string]string{"interval": v.period.String()}, nil
	case KindSignal:
		return map[string][]string{"signal": v.Names()}, nil
	default:
		return v.static, nil
	}
}

// IsZero reports whether v is a Static holding T's zero value.
func (v Value[T]) IsZero() bool {
	if v.kind != KindStatic {
		return false
	}
	return reflect.ValueOf(&v.static).Elem().IsZero()
}
