// Package cmd provides the CLI commands for evemt.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Embers-of-the-Fire/evemt/internal/app"
	"github.com/Embers-of-the-Fire/evemt/internal/config"
	"github.com/Embers-of-the-Fire/evemt/internal/logging"
	"github.com/Embers-of-the-Fire/evemt/internal/ui"
	"github.com/Embers-of-the-Fire/evemt/pkg/version"
)

// Global flags and the state PersistentPreRunE derives from them.
var (
	debugMode   bool
	configPath  string
	dataDirFlag string
	noColor     bool

	loadedConfig   *config.Config
	loggingCleanup func()
)

// NewRootCmd creates the root command for the evemt CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evemt",
		Short: "Manage EVE data packs and search their localized names",
		Long: `evemt imports versioned game data packs, keeps one of them active,
and answers fuzzy searches over the active pack's localized names and
descriptions.

Packs live under <data-dir>/packs. The active pack is remembered in
<data-dir>/config.json and re-activated on the next run.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("evemt version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging (also mirrored to stderr)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: $XDG_CONFIG_HOME/evemt/config.yaml)")
	cmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (overrides config and EVEMT_DATA_DIR)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = setupConfigAndLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newPackCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newLocCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupConfigAndLogging loads the config and starts file logging.
func setupConfigAndLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(userConfigPath())
	if err != nil {
		return err
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	loadedConfig = cfg

	logCfg := logging.DefaultConfig(cfg.DataDir)
	logCfg.Level = cfg.Log.Level
	if debugMode {
		logCfg = logging.DebugConfig(cfg.DataDir)
	}
	logCfg.MaxSizeMB = cfg.Log.MaxSizeMB
	logCfg.MaxFiles = cfg.Log.MaxFiles

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Debug("evemt_started",
		slog.String("version", version.Version),
		slog.String("data_dir", cfg.DataDir),
		slog.String("log_file", logCfg.FilePath))
	return nil
}

// stopLogging flushes and closes the log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	err := NewRootCmd().Execute()
	// PersistentPostRunE is skipped when a command fails.
	_ = stopLogging(nil, nil)
	return err
}

// openService builds the service and runs the startup scan. Callers must
// Close it.
func openService(ctx context.Context) (*app.Service, error) {
	svc, err := app.New(loadedConfig, app.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	if err := svc.Init(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

func styles() ui.Styles {
	return ui.GetStyles(noColor || ui.DetectNoColor())
}
