package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/wayglance/internal/config"
	"github.com/jmylchreest/wayglance/internal/daemon"
	"github.com/jmylchreest/wayglance/internal/loop"
)

var checkOpts struct {
	dump bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the layout without opening windows",
	Long: `Evaluate the Lua layout and report the first error with its field path.

With --dump the parsed widget tree is printed as YAML. Callbacks are shown by
kind only; nothing is polled and no signal is subscribed.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkOpts.dump, "dump", false,
		"Print the parsed layout as YAML")
}

func runCheck(cmd *cobra.Command, args []string) error {
	sched := loop.NewManual()
	rt, err := daemon.New(daemon.Options{
		Settings:  settings,
		Scheduler: sched,
		Logger:    logger,
		Backends:  &daemon.Backends{},
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	cfg, err := rt.Load(globalOpts.configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !checkOpts.dump {
		_, err := fmt.Fprintf(out, "%s: ok (app id %s)\n", globalOpts.configPath, cfg.AppID())
		return err
	}
	return dump(cmd, cfg)
}

func dump(cmd *cobra.Command, cfg *config.Config) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	return enc.Close()
}
