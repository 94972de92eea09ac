package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"romdex/internal/onegame"
)

func newOneGameCommand(ctx *commandContext) *cobra.Command {
	var datFlag string
	var regionsFlag []string
	var languagesFlag []string

	cmd := &cobra.Command{
		Use:   "onegame",
		Short: "Pick one canonical release per game family from the catalogs",
		Long: "Onegame groups catalog entries into parent/clone families and picks " +
			"exactly one preferred release per family, ranked by region priority, " +
			"then language priority. The selection is deterministic for a given " +
			"catalog and configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			index, err := loadCatalogIndex(cfg, datFlag)
			if err != nil {
				return err
			}
			if index == nil {
				return fmt.Errorf("no catalogs found; add DAT files to %s or pass --dat", cfg.Paths.CatalogDir)
			}

			opts := onegame.Options{
				RegionPriority:   cfg.OneGame.RegionPriority,
				LanguagePriority: cfg.OneGame.LanguagePriority,
				PreferParent:     cfg.OneGame.PreferParent,
			}
			if len(regionsFlag) > 0 {
				opts.RegionPriority = regionsFlag
			}
			if len(languagesFlag) > 0 {
				opts.LanguagePriority = languagesFlag
			}

			selections := onegame.ResolveAll(index, opts)
			if ctx.JSONMode() {
				return writeJSON(cmd, onegameJSON(selections))
			}

			rows := make([][]string, 0, len(selections))
			for _, selection := range selections {
				rows = append(rows, []string{
					selection.Family,
					selection.Chosen.Name,
					strings.Join(selection.Chosen.Regions, ", "),
					fmt.Sprintf("%d", len(selection.Others)),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Family", "Chosen Release", "Regions", "Others"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d families resolved\n", len(selections))
			return nil
		},
	}

	cmd.Flags().StringVar(&datFlag, "dat", "", "Resolve a single DAT file instead of the catalog directory")
	cmd.Flags().StringSliceVar(&regionsFlag, "regions", nil, "Override the configured region priority")
	cmd.Flags().StringSliceVar(&languagesFlag, "languages", nil, "Override the configured language priority")
	return cmd
}

type onegameSelectionJSON struct {
	Family string   `json:"family"`
	Chosen string   `json:"chosen"`
	Others []string `json:"others,omitempty"`
}

func onegameJSON(selections []onegame.Selection) []onegameSelectionJSON {
	out := make([]onegameSelectionJSON, 0, len(selections))
	for _, selection := range selections {
		item := onegameSelectionJSON{Family: selection.Family, Chosen: selection.Chosen.Name}
		for _, other := range selection.Others {
			item.Others = append(item.Others, other.Name)
		}
		out = append(out, item)
	}
	return out
}
