// Package shell runs the GTK4 layer-shell windows that host the widget tree.
//
// Everything in this package runs on the GTK main goroutine. Other goroutines
// reach it only through the Scheduler.
package shell
