package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/export"
	"github.com/Faultbox/skinforge/internal/viewer"
	"github.com/Faultbox/skinforge/pkg/skin"
)

// skinOpts holds the flags shared by commands that build one skin.
type skinOpts struct {
	output string
	index  int
	watch  bool
}

func (o *skinOpts) register(cmd *cobra.Command, outputHelp string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", outputHelp)
	cmd.Flags().IntVar(&o.index, "index", 0, "skin index within --pack")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "rebuild whenever a local skin file changes")
}

// outputPath derives a default output next to the working directory from ref.
func outputPath(output, ref, ext string) string {
	if output != "" {
		return output
	}
	base := filepath.Base(ref)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "skin"
	}
	return base + ext
}

// withModel fetches, decodes and assembles the skin selected by args and hands
// it to produce. With --watch it repeats on every change of the skin file until
// the command context is cancelled.
func (c *CLI) withModel(cmd *cobra.Command, args []string, opts skinOpts, produce func(m *skin.Model, ref string) error) error {
	ctx := cmd.Context()
	f, cache, err := c.fetcher(ctx)
	if err != nil {
		return err
	}
	defer closeCache(c.log, cache)

	ref, err := c.resolveSkin(ctx, f, args, opts.index)
	if err != nil {
		return err
	}
	loader := viewer.NewSkinLoader(f, c.builder())
	run := func() error {
		m, err := loader.Load(ctx, ref)
		if err != nil {
			return err
		}
		for _, p := range m.Parts {
			if p.OverlayErr != nil {
				c.log.Warn("overlay skipped", zap.String("part", p.Name), zap.Error(p.OverlayErr))
			}
		}
		return produce(m, ref)
	}

	if !opts.watch {
		return run()
	}
	if assets.IsRemote(ref) {
		return fmt.Errorf("%w: --watch needs a local file, got %s", assets.ErrWatch, ref)
	}

	w := cmd.ErrOrStderr()
	if err := run(); err != nil {
		printWarning(w, "%v", err)
	}
	printTitle(w, "watching "+ref)
	err = assets.WatchFiles(ctx, []string{ref}, assets.DefaultDebounce, c.log, func(string) {
		if err := f.Invalidate(ctx, ref); err != nil {
			c.log.Warn("cache invalidate failed", zap.Error(err))
		}
		if err := run(); err != nil {
			printWarning(w, "%v", err)
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *CLI) buildCommand() *cobra.Command {
	var opts skinOpts
	cmd := &cobra.Command{
		Use:   "build [skin]",
		Short: "Build a skin into a glTF model (.glb or .gltf)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withModel(cmd, args, opts, func(m *skin.Model, ref string) error {
				out := outputPath(opts.output, ref, ".glb")
				if err := export.WriteGLTF(m, out); err != nil {
					return err
				}
				s := m.Stats()
				c.log.Info("model written", zap.String("path", out), zap.Int("voxels", s.Voxels))
				w := cmd.OutOrStdout()
				printSuccess(w, "built %s parts, %s voxels, %s materials", number(s.Parts), number(s.Voxels), number(s.Materials))
				printFile(w, out)
				return nil
			})
		},
	}
	opts.register(cmd, "output file (.glb or .gltf)")
	return cmd
}

func (c *CLI) previewCommand() *cobra.Command {
	var opts skinOpts
	cmd := &cobra.Command{
		Use:   "preview [skin]",
		Short: "Render a front view of a skin to PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withModel(cmd, args, opts, func(m *skin.Model, ref string) error {
				out := outputPath(opts.output, ref, ".preview.png")
				img := export.RenderPreview(m, c.cfg.Export.PreviewScale)
				if err := export.WritePNG(img, out); err != nil {
					return err
				}
				b := img.Bounds()
				w := cmd.OutOrStdout()
				printSuccess(w, "rendered %sx%s preview", number(b.Dx()), number(b.Dy()))
				printFile(w, out)
				return nil
			})
		},
	}
	opts.register(cmd, "output PNG file")
	cmd.Flags().IntVar(&c.ov.Scale, "scale", 0, "pixels per atlas pixel (default from config)")
	return cmd
}
