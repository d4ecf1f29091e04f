package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/catalog"
	"github.com/Faultbox/skinforge/internal/logger"
	"github.com/Faultbox/skinforge/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog, GLB models and previews over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, cache, err := c.fetcher(ctx)
			if err != nil {
				return err
			}
			defer closeCache(c.log, cache)

			cat, err := catalog.Open(ctx, f, c.cfg.Server.Catalog)
			if err != nil {
				return err
			}
			c.log.Info("catalog loaded", zap.String("catalog", c.cfg.Server.Catalog), zap.Int("packs", len(cat.Packs)))

			s := server.New(server.Options{
				Catalog:      cat,
				Fetcher:      f,
				Builder:      c.builder(),
				Cache:        cache,
				CacheTTL:     c.cfg.Assets.CacheTTL,
				PreviewScale: c.cfg.Export.PreviewScale,
				Logger:       logger.Named("http"),
			})
			return s.ListenAndServe(ctx, c.cfg.Server.Listen, c.cfg.Server.ShutdownTimeout)
		},
	}
	cmd.Flags().StringVar(&c.ov.Listen, "listen", "", "listen address (default from config)")
	return cmd
}
