// Package loop defines the cooperative scheduler that owns the UI goroutine.
//
// Everything that touches the signal bus, the Lua state or GTK objects runs on
// a single goroutine driven by a Scheduler. Other goroutines hand work over with
// Post; periodic work is registered with Every. In the shell the scheduler is
// the GLib main loop; Loop is a plain Go implementation for headless commands
// and Manual is a deterministic implementation for tests.
package loop
