package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
	"github.com/Embers-of-the-Fire/evemt/internal/events"
	"github.com/Embers-of-the-Fire/evemt/internal/importer"
	"github.com/Embers-of-the-Fire/evemt/internal/pack"
	"github.com/Embers-of-the-Fire/evemt/internal/ui"
)

func newPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Import, list, activate, and remove data packs",
	}

	cmd.AddCommand(newPackImportCmd())
	cmd.AddCommand(newPackListCmd())
	cmd.AddCommand(newPackActivateCmd())
	cmd.AddCommand(newPackRemoveCmd())
	cmd.AddCommand(newPackActiveCmd())
	return cmd
}

func newPackImportCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "import <archive.zip>...",
		Short: "Import pack archives",
		Long: `Extract each archive into <data-dir>/packs/<archive name> and register it.

Archives are imported in parallel. The first pack imported into an empty
catalog becomes the active pack.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			notices, stop := svc.Events().Subscribe(0)
			defer stop()

			tasks := make([]*importer.Task, len(args))
			for i, path := range args {
				tasks[i] = svc.ImportPack(ctx, path)
			}

			uiCfg := ui.NewConfig(cmd.OutOrStdout(),
				ui.WithForcePlain(plain),
				ui.WithNoColor(noColor),
				ui.WithLanguage(string(svc.Settings().Language)))

			failed := 0
			for _, task := range tasks {
				res, err := ui.Play(ctx, ui.NewRenderer(uiCfg), task)
				if err != nil {
					return err
				}
				if !res.Success {
					failed++
				}
			}
			if err := reportActivations(cmd.OutOrStdout(), notices); err != nil {
				return err
			}
			if failed > 0 {
				return apperrors.Newf(apperrors.ErrCodeIO, "%d of %d imports failed", failed, len(tasks))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Plain line-per-event progress output")
	return cmd
}

// reportActivations prints every activation that has already succeeded on ch.
// It does not wait for more.
func reportActivations(w io.Writer, ch <-chan events.Event) error {
	for {
		select {
		case e := <-ch:
			if e.Type != events.ActivePackChangeFinished || e.Error != "" || e.PackID == "" {
				continue
			}
			if _, err := fmt.Fprintf(w, "Active pack: %s\n", e.PackID); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// packView is the JSON shape of a listed pack.
type packView struct {
	*pack.Descriptor
	Active bool `json:"active"`
}

func newPackListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported packs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			packs := svc.ListPacks()
			activeID, _ := svc.ActivePackID()

			if jsonOutput {
				views := make([]packView, 0, len(packs))
				for _, d := range packs {
					views = append(views, packView{Descriptor: d, Active: d.ID == activeID})
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}
			ui.RenderPacks(cmd.OutOrStdout(), packs, activeID, string(svc.Settings().Language), styles())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPackActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a pack the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.ActivatePack(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Active pack: %s\n", args[0])
			return err
		},
	}
}

func newPackRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a pack and its directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.RemovePack(args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed pack: %s\n", args[0])
			return err
		},
	}
}

func newPackActiveCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "active",
		Short: "Show the active pack",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			d := svc.ActivePack()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			if d == nil {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No active pack.")
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), d.String())
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
