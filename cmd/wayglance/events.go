package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wayglance/internal/daemon"
	"github.com/jmylchreest/wayglance/internal/eventlog"
	"github.com/jmylchreest/wayglance/internal/logging"
	"github.com/jmylchreest/wayglance/internal/loop"
	"github.com/jmylchreest/wayglance/internal/source"
	"github.com/jmylchreest/wayglance/internal/source/hyprland"
	"github.com/jmylchreest/wayglance/internal/source/mpris"
)

var eventsOpts struct {
	backends []string
}

// backendKinds lists the signal suffixes of every built-in adapter.
var backendKinds = map[string][]string{
	hyprland.Name: hyprland.Kinds,
	mpris.Name:    mpris.Kinds,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print adapter signals as scripts receive them",
	Long: `Start the event sources without a GUI and print every signal they emit,
one per line, with the payload as JSON.

Examples:
  wayglance events
  wayglance events --backend hyprland`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().StringSliceVar(&eventsOpts.backends, "backend", nil,
		"Only start these backends (hyprland, mpris)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	for _, b := range eventsOpts.backends {
		if _, ok := backendKinds[b]; !ok {
			return fmt.Errorf("unknown backend %q, must be one of: %s, %s", b, hyprland.Name, mpris.Name)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := loop.New(logger)
	rt, err := daemon.New(daemon.Options{
		Settings:  settings,
		Scheduler: l,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	out := cmd.OutOrStdout()
	printer := eventlog.New(out, rt.State().L, logging.IsTerminal(out))

	var names []string
	for _, name := range rt.Adapters() {
		if len(eventsOpts.backends) > 0 && !slices.Contains(eventsOpts.backends, name) {
			continue
		}
		names = append(names, name)
		for _, kind := range backendKinds[name] {
			signalName := source.SignalName(name, kind)
			rt.Bus().Subscribe(signalName, printer.Listener(signalName))
		}
	}
	if len(names) == 0 {
		return errors.New("no event source is available")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rt.StartAdapters(ctx, names...)

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- rt.Wait(ctx)
		// Let the loop deliver what the adapters queued before stopping.
		l.Post(cancel)
	}()

	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := <-waitErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
