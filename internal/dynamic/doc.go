// Package dynamic models widget properties that are either constants or
// live values, and binds them to the objects that display them.
//
// A Value is parsed from configuration. Plain values become Static; a table
// carrying the "__wayglance_dynamic" field describes an Interval (polled on a
// timer) or a Signal (recomputed when a bus signal is emitted). Bind attaches a
// Value to a target through an apply function and registers the cleanup on the
// target's Lifetime, so nothing runs for a property once its object is gone.
package dynamic
