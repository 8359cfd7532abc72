// Package source moves events from backend adapters onto the signal bus.
//
// An Adapter listens to a backend (the Hyprland IPC socket, the D-Bus session
// bus) on its own goroutine and sends Messages into a channel. A Dispatcher
// receives from that channel and posts each message to the UI scheduler,
// where it is converted to a Lua value and emitted as "<backend>::<kind>".
// Messages from one adapter reach the bus in the order they were sent.
package source

import (
	"context"
	"log/slog"

	lua "github.com/yuin/gopher-lua"
)

// Event is a typed backend event. ToLua runs on the UI goroutine.
type Event interface {
	ToLua(L *lua.LState) (lua.LValue, error)
}

// Message pairs an event with the signal suffix it is emitted under.
type Message struct {
	Kind  string
	Event Event
}

// Adapter is a backend event listener.
type Adapter interface {
	// Name is the signal namespace, e.g. "hyprland".
	Name() string

	// Listen blocks, sending events to out until ctx is cancelled or the
	// backend fails. A returned error is fatal for the adapter.
	Listen(ctx context.Context, out chan<- Message) error
}

// Send queues msg on out. If ctx is cancelled first the event is dropped
// with a warning and Send returns false.
func Send(ctx context.Context, out chan<- Message, msg Message, logger *slog.Logger) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("dropping event, receiver is gone", "kind", msg.Kind)
		return false
	}
}

// Func adapts a conversion function to Event.
type Func func(L *lua.LState) (lua.LValue, error)

// ToLua implements Event.
func (f Func) ToLua(L *lua.LState) (lua.LValue, error) {
	return f(L)
}

// Bool is an event whose payload is a boolean.
type Bool bool

// ToLua implements Event.
func (b Bool) ToLua(*lua.LState) (lua.LValue, error) {
	return lua.LBool(b), nil
}
