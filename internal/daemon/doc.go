// Package daemon provides the main orchestration for wayglance.
// It wires the Lua state, the signal bus, the binder and the event sources
// that every command shares, independent of the GTK shell.
package daemon
