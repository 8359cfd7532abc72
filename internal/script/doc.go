// Package script hosts the Lua runtime that evaluates wayglance configuration.
//
// A State wraps one gopher-lua LState. The LState is not goroutine safe, so a
// State belongs to the goroutine that owns the UI scheduler: configuration
// evaluation, callbacks from bindings and signal listeners all run there.
// Calls nest freely (a callback may emit a signal whose listener calls back
// into Lua), which is why State carries no lock.
//
// The package also provides the converters that turn Lua values into Go values
// with descriptive ConversionErrors, and a Bridge for the generic conversion
// of Go data (decoded JSON, metric snapshots) into Lua tables.
package script
