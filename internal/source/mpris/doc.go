// Package mpris follows media players over the D-Bus session bus.
//
// Listener watches PropertiesChanged on the MPRIS player interface and emits
// "mpris::playback_status" and "mpris::metadata". Controller sends the
// transport commands used by button callbacks.
package mpris
