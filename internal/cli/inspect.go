package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Faultbox/skinforge/pkg/atlas"
	"github.com/Faultbox/skinforge/pkg/skin"
)

// layoutName names the part table selected for an atlas.
func layoutName(a *atlas.Atlas) string {
	if skin.IsLegacy(a) {
		return "legacy 64x32"
	}
	return "canonical 64x64"
}

func (c *CLI) inspectCommand() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "inspect [skin]",
		Short: "Show how a skin atlas maps onto the model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, cache, err := c.fetcher(ctx)
			if err != nil {
				return err
			}
			defer closeCache(c.log, cache)

			ref, err := c.resolveSkin(ctx, f, args, index)
			if err != nil {
				return err
			}
			data, err := f.Fetch(ctx, ref)
			if err != nil {
				return err
			}
			a, err := atlas.Decode(data)
			if err != nil {
				return err
			}
			m, err := c.builder().BuildModel(a)
			if err != nil {
				return err
			}
			writeInspect(cmd.OutOrStdout(), ref, a, m)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "skin index within --pack")
	return cmd
}

func writeInspect(w io.Writer, ref string, a *atlas.Atlas, m *skin.Model) {
	printTitle(w, ref)
	printKeyValue(w, "atlas", fmt.Sprintf("%dx%d", a.Width(), a.Height()))
	printKeyValue(w, "layout", layoutName(a))
	b := m.Bounds()
	printKeyValue(w, "bounds", fmt.Sprintf("%.3g..%.3g x %.3g..%.3g x %.3g..%.3g",
		b.Min[0], b.Max[0], b.Min[1], b.Max[1], b.Min[2], b.Max[2]))
	fmt.Fprintln(w)

	for _, p := range m.Parts {
		size := fmt.Sprintf("%gx%gx%g", p.Size[0], p.Size[1], p.Size[2])
		fmt.Fprintf(w, "  %-10s %-14s %s voxels\n", p.Name, size, number(len(p.Voxels)))
		if p.OverlayErr != nil {
			printWarning(w, "  %s overlay: %v", p.Name, p.OverlayErr)
		}
	}
	fmt.Fprintln(w)

	s := m.Stats()
	printSuccess(w, "%s parts, %s voxels, %s materials", number(s.Parts), number(s.Voxels), number(s.Materials))
}
