package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Embers-of-the-Fire/evemt/internal/localization"
	"github.com/Embers-of-the-Fire/evemt/internal/search"
	"github.com/Embers-of-the-Fire/evemt/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var (
		description bool
		lang        string
		limit       int
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "search <kind> <query>",
		Short: "Search the active pack by name or description",
		Long: `Search entity names (or descriptions) in the active pack.

Kinds: type, region, constellation, system, npc_corporation.
Matching is case-insensitive substring containment; results are ranked
best first.

Examples:
  evemt search type megacyte
  evemt search system 吉他 --lang zh
  evemt search type "common ore" --description`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := search.ParseKind(args[0])
			if err != nil {
				return err
			}
			query := strings.Join(args[1:], " ")

			svc, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			language := svc.Language()
			if lang != "" {
				if language, err = localization.ParseLanguage(lang); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("limit") {
				limit = loadedConfig.Search.DefaultLimit
			}

			var ids []int32
			if description {
				ids, err = svc.SearchByDescription(kind, query, language, limit)
			} else {
				ids, err = svc.SearchByName(kind, query, language, limit)
			}
			if err != nil {
				return err
			}

			hits := make([]ui.Hit, 0, len(ids))
			for _, id := range ids {
				name, _, err := svc.EntityName(kind, id, language)
				if err != nil {
					return err
				}
				hits = append(hits, ui.Hit{ID: id, Name: name})
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), hits)
			}
			ui.RenderHits(cmd.OutOrStdout(), hits, styles())
			return nil
		},
	}

	cmd.Flags().BoolVar(&description, "description", false, "Search descriptions instead of names")
	cmd.Flags().StringVar(&lang, "lang", "", "Search language: en or zh (default: settings language)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results (default: search.default_limit)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
