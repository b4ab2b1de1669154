package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "github.com/Embers-of-the-Fire/evemt/internal/errors"
)

func newLocCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "loc <key>",
		Short: "Look up a localization key in the active pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return apperrors.New(apperrors.ErrCodeInvalidInput,
					fmt.Sprintf("invalid localization key %q", args[0]), err)
			}

			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			str, ok, err := svc.GetLocalization(uint32(key))
			if err != nil {
				return err
			}
			if jsonOutput {
				if !ok {
					return writeJSON(cmd.OutOrStdout(), nil)
				}
				return writeJSON(cmd.OutOrStdout(), str)
			}
			if !ok {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "No localization for key %d.\n", key)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "en: %s\nzh: %s\n", str.En, str.Zh)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
