package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/Embers-of-the-Fire/evemt/internal/logging"
)

func newLogsCmd() *cobra.Command {
	var (
		lines   int
		level   string
		filter  string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View evemt logs",
		Long: `Show the last lines of the evemt log (<data-dir>/logs/evemt.log).

Examples:
  evemt logs                    # Show last 50 lines
  evemt logs -n 100             # Show last 100 lines
  evemt logs --level warn       # Show warnings and errors
  evemt logs --filter import    # Filter by pattern`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(logFile, loadedConfig.DataDir)
			if err != nil {
				return err
			}

			if level != "" && !logging.ValidLevel(level) {
				return fmt.Errorf("invalid level %q (use debug, info, warn, or error)", level)
			}

			var pattern *regexp.Regexp
			if filter != "" {
				pattern, err = regexp.Compile(filter)
				if err != nil {
					return fmt.Errorf("invalid filter pattern: %w", err)
				}
			}

			viewer := logging.NewViewer(logging.ViewerConfig{
				Level:   level,
				Pattern: pattern,
				NoColor: noColor,
			}, cmd.OutOrStdout())

			entries, err := viewer.Tail(path, lines)
			if err != nil {
				return err
			}
			viewer.Print(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&level, "level", "", "Minimum log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&filter, "filter", "", "Filter by keyword/pattern (regex)")
	cmd.Flags().StringVar(&logFile, "file", "", "Path to log file")
	return cmd
}
