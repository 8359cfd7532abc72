// Package signal implements the process-wide publish/subscribe registry that
// connects emitters (scripts and backend adapters) to bound widget properties.
//
// A Bus is confined to the goroutine that owns the UI scheduler and has no
// internal locking. Listeners may subscribe and unsubscribe, including
// themselves, while an Emit is running: Emit works on a snapshot taken before
// the first listener runs, so changes apply from the next Emit onwards.
package signal

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// Listener receives the payload of an emitted signal. LNil is the empty payload.
type Listener func(payload lua.LValue)

// ID identifies a subscription. IDs start at 1 and are never reused.
type ID uint64

// Bus maps signal names to their subscribed listeners.
type Bus struct {
	listeners map[string]map[ID]Listener
	nextID    ID
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string]map[ID]Listener),
	}
}

// Subscribe registers l for name and returns its subscription ID.
func (b *Bus) Subscribe(name string, l Listener) ID {
	b.nextID++
	id := b.nextID

	set, ok := b.listeners[name]
	if !ok {
		set = make(map[ID]Listener)
		b.listeners[name] = set
	}
	set[id] = l
	return id
}

// Unsubscribe removes the listener. Unknown names or IDs are ignored.
func (b *Bus) Unsubscribe(name string, id ID) {
	set, ok := b.listeners[name]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(b.listeners, name)
	}
}

// Emit invokes every listener subscribed to name when Emit starts, in
// ascending subscription order.
func (b *Bus) Emit(name string, payload lua.LValue) {
	if payload == nil {
		payload = lua.LNil
	}

	set := b.listeners[name]
	if len(set) == 0 {
		return
	}

	type entry struct {
		id ID
		l  Listener
	}
	snapshot := make([]entry, 0, len(set))
	for id, l := range set {
		snapshot = append(snapshot, entry{id, l})
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].id < snapshot[j].id })

	for _, e := range snapshot {
		e.l(payload)
	}
}

// Count returns the number of listeners subscribed to name.
func (b *Bus) Count(name string) int {
	return len(b.listeners[name])
}

// Names returns the signal names with at least one listener, sorted.
func (b *Bus) Names() []string {
	names := make([]string, 0, len(b.listeners))
	for name := range b.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
