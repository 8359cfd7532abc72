package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wayglance/internal/daemon"
	"github.com/jmylchreest/wayglance/internal/shell"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the shell (default)",
	Long: `Load the layout and open one layer-shell window per matching monitor.

The process runs until it receives SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := shell.NewScheduler()
	rt, err := daemon.New(daemon.Options{
		Settings:  settings,
		Scheduler: sched,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("failed to close lua state", "error", err)
		}
	}()

	cfg, err := rt.Load(globalOpts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("starting wayglance", "version", version, "config", globalOpts.configPath, "app_id", cfg.AppID())

	app := shell.New(cfg, shell.Options{
		Settings:  settings,
		Scheduler: sched,
		Binder:    rt.Binder(),
		Logger:    logger,
		OnActivate: func(ctx context.Context) {
			n := rt.StartAdapters(ctx)
			logger.Debug("event sources started", "count", n)
		},
	})
	if code := app.Run(ctx); code != 0 {
		return fmt.Errorf("application exited with status %d", code)
	}
	return nil
}
