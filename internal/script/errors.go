package script

import (
	"errors"
	"fmt"
	"strings"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoResult is returned when a script that must produce a value returns nothing.
	ErrNoResult = errors.New("lua chunk returned no value")
)

// ConversionError reports a Lua value that could not be turned into the
// requested Go shape.
type ConversionError struct {
	From    string // Lua type name of the offending value
	To      string // Name of the wanted type
	Message string // Optional detail
}

func (e *ConversionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("error converting Lua %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("error converting Lua %s to %s (%s)", e.From, e.To, e.Message)
}

// FieldError attaches the path of a configuration field to an error.
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Field prefixes err with the field name. Nested calls build a dotted path,
// with index segments such as "[2]" attached without a dot. A nil err stays nil.
func Field(name string, err error) error {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FieldError); ok {
		return &FieldError{Path: joinPath(name, fe.Path), Err: fe.Err}
	}
	return &FieldError{Path: name, Err: err}
}

// Index is Field for sequence elements; i is 1-based as in Lua.
func Index(i int, err error) error {
	return Field(fmt.Sprintf("[%d]", i), err)
}

func joinPath(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	case strings.HasPrefix(child, "["):
		return parent + child
	default:
		return parent + "." + child
	}
}
