package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Embers-of-the-Fire/evemt/internal/app"
	"github.com/Embers-of-the-Fire/evemt/internal/config"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change persisted settings",
	}

	var jsonOutput bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(func(svc *app.Service) error {
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), svc.Settings())
				}
				return printSettings(cmd.OutOrStdout(), svc.Settings())
			})
		},
	}
	show.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	theme := &cobra.Command{
		Use:   "theme <dark|light>",
		Short: "Set the UI theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := config.ParseTheme(args[0])
			if err != nil {
				return err
			}
			return withSettings(func(svc *app.Service) error {
				if err := svc.SetTheme(t); err != nil {
					return err
				}
				return printSettings(cmd.OutOrStdout(), svc.Settings())
			})
		},
	}

	language := &cobra.Command{
		Use:   "language <zh|en>",
		Short: "Set the UI and default search language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := config.ParseLanguage(args[0])
			if err != nil {
				return err
			}
			return withSettings(func(svc *app.Service) error {
				if err := svc.SetLanguage(l); err != nil {
					return err
				}
				return printSettings(cmd.OutOrStdout(), svc.Settings())
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings and forget the active pack",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSettings(func(svc *app.Service) error {
				st, err := svc.ResetSettings()
				if err != nil {
					return err
				}
				return printSettings(cmd.OutOrStdout(), st)
			})
		},
	}

	cmd.AddCommand(show, theme, language, reset)
	return cmd
}

// withSettings runs fn against a service that has not scanned packs.
// Settings commands never need the catalog.
func withSettings(fn func(*app.Service) error) error {
	svc, err := app.New(loadedConfig)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

func printSettings(w io.Writer, st config.Settings) error {
	enabled := st.EnabledPack()
	if enabled == "" {
		enabled = "(none)"
	}
	_, err := fmt.Fprintf(w, "theme:        %s\nlanguage:     %s\nenabled pack: %s\n", st.Theme, st.Language, enabled)
	return err
}
