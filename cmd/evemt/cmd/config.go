package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Embers-of-the-Fire/evemt/configs"
	"github.com/Embers-of-the-Fire/evemt/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the application configuration file",
		Long: `Manage config.yaml, which holds the data directory, log, import and
search settings.

Precedence (lowest to highest):
  1. Built-in defaults
  2. config.yaml ($XDG_CONFIG_HOME/evemt/config.yaml or --config)
  3. EVEMT_* environment variables
  4. --data-dir

Theme, language and the remembered pack are user settings, not
configuration; see 'evemt settings'.`,
		Example: `  # Create config.yaml from the template
  evemt config init

  # Show the effective configuration
  evemt config show --json`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config.yaml from the template",
		Long: `Create the configuration file from the built-in commented template.

An existing file is left alone unless --force is given, in which case it
is backed up next to itself before being replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file (a backup is kept)")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), loadedConfig)
			}
			data, err := yaml.Marshal(loadedConfig)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), userConfigPath())
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := cmd.OutOrStdout()
	path := userConfigPath()

	if _, err := os.Stat(path); err == nil {
		if !force {
			fmt.Fprintf(out, "Configuration already exists: %s\n", path)
			fmt.Fprintln(out, "Use --force to replace it with the template.")
			return nil
		}
		backup, err := config.BackupFile(path)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		fmt.Fprintf(out, "Backup: %s\n", backup)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}

// userConfigPath is the file the current invocation reads.
func userConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.GetUserConfigPath()
}
