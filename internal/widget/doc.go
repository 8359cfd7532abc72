// Package widget is the toolkit-independent widget tree read from configuration.
//
// Each widget table has a "type" field selecting its Kind. Parsing goes
// through a table of per-kind parsers; the shell builds GTK widgets through a
// matching table of builders.
package widget
