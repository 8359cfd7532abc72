package widget

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/script"
)

// Align is a widget alignment. AlignUnset leaves the toolkit default.
type Align int

const (
	AlignUnset Align = iota
	AlignStart
	AlignCenter
	AlignEnd
	AlignFill
	AlignBaseline
)

var alignNames = []string{"", "start", "center", "end", "fill", "baseline"}

func (a Align) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return fmt.Sprintf("Align(%d)", int(a))
}

func (a Align) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAlign reads an alignment name.
func ParseAlign(lv lua.LValue) (Align, error) {
	i, err := parseEnum(lv, "Alignment", alignNames[1:])
	return Align(i + 1), err
}

// Orientation is the main axis of a container.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

var orientationNames = []string{"horizontal", "vertical"}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ParseOrientation reads an orientation name.
func ParseOrientation(lv lua.LValue) (Orientation, error) {
	i, err := parseEnum(lv, "Orientation", orientationNames)
	return Orientation(i), err
}

// parseEnum returns the index of the string lv in names.
func parseEnum(lv lua.LValue, to string, names []string) (int, error) {
	s, ok := lv.(lua.LString)
	if !ok {
		return 0, &script.ConversionError{From: script.TypeName(lv), To: to, Message: "expected a string"}
	}
	for i, n := range names {
		if string(s) == n {
			return i, nil
		}
	}
	return 0, &script.ConversionError{
		From:    "string",
		To:      to,
		Message: fmt.Sprintf("invalid %s %q, expected one of %s", strings.ToLower(to), string(s), strings.Join(names, ", ")),
	}
}
