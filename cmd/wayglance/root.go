package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wayglance/internal/config"
	"github.com/jmylchreest/wayglance/internal/logging"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	settings   *config.Settings
	globalOpts struct {
		configPath   string
		settingsPath string
		logLevel     logging.Level
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wayglance",
	Short: "Scriptable status bars and widgets for Wayland",
	Long: `wayglance draws layer-shell widgets described by a Lua configuration.

Widget properties can be static, polled on an interval, or recomputed when a
signal arrives from Hyprland, an MPRIS player, or a script.

Running wayglance without a subcommand runs the shell.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := globalOpts.settingsPath
		if path == "" {
			var err error
			if path, err = config.SettingsPath(); err != nil {
				return fmt.Errorf("failed to locate settings: %w", err)
			}
		}

		var err error
		settings, err = config.LoadSettings(path)
		if err != nil {
			return err
		}
		return setupLogger()
	},
	RunE: runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = "config.lua"
	}

	rootCmd.PersistentFlags().StringVarP(&globalOpts.configPath, "config", "c", defaultConfig,
		"Path to the Lua layout")
	rootCmd.PersistentFlags().StringVar(&globalOpts.settingsPath, "settings", "",
		"Path to settings file (default: ~/.config/wayglance/wayglance.toml)")
	rootCmd.PersistentFlags().VarP(&globalOpts.logLevel, "log-level", "l",
		"Log level: debug, info, warn or error (overrides "+logging.EnvLevel+")")
}

// setupLogger configures the global slog logger. Logs go to stderr so stdout
// stays clean for output.
func setupLogger() error {
	level, err := globalOpts.logLevel.Resolve(os.Getenv, settings)
	if err != nil {
		return err
	}
	logger = logging.New(os.Stderr, settings.Log.Format, level)
	slog.SetDefault(logger)
	return nil
}
