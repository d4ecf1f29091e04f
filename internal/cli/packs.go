package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/skinforge/internal/catalog"
)

func (c *CLI) packsCommand() *cobra.Command {
	var asJSON, skins bool
	cmd := &cobra.Command{
		Use:   "packs [query]",
		Short: "List the packs of the skin catalog",
		Long:  `List catalog packs. A query filters by name and description, ignoring case.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, cache, err := c.fetcher(ctx)
			if err != nil {
				return err
			}
			defer closeCache(c.log, cache)

			cat, err := catalog.Open(ctx, f, c.cfg.Viewer.Catalog)
			if err != nil {
				return err
			}
			packs := cat.Filter(strings.Join(args, " "))

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(packs)
			}
			if len(packs) == 0 {
				printWarning(w, "no packs match")
				return nil
			}
			for _, p := range packs {
				fmt.Fprintf(w, "%s %s\n", styleTitle.Render(p.Name), styleDim.Render(fmt.Sprintf("(%d skins)", len(p.Skins))))
				if p.Description != "" {
					fmt.Fprintln(w, "  "+p.Description)
				}
				if skins {
					for i, s := range p.Skins {
						fmt.Fprintf(w, "  %s %s\n", number(i), s.DisplayName(i))
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print packs as JSON")
	cmd.Flags().BoolVar(&skins, "skins", false, "list the skins of each pack")
	return cmd
}
