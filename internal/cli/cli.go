// Package cli implements the skinforge command-line interface.
package cli

import (
	"context"
	"errors"
	"flag"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/catalog"
	"github.com/Faultbox/skinforge/internal/config"
	"github.com/Faultbox/skinforge/internal/logger"
	"github.com/Faultbox/skinforge/pkg/skin"
)

const appName = "skinforge"

// ErrNoSkin is returned when a command has neither a skin argument nor a --pack.
var ErrNoSkin = errors.New("no skin given: pass a path or URL, or --pack with --index")

// CLI holds state shared by all commands.
type CLI struct {
	cfg *config.Config
	ov  *config.Overrides
	log *zap.Logger
}

// New creates a CLI with default configuration.
func New() *CLI {
	return &CLI{cfg: config.Default(), log: zap.NewNop()}
}

// Config returns the configuration loaded for the running command.
func (c *CLI) Config() *config.Config {
	return c.cfg
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Skinforge turns character skin atlases into 3D models",
		Long:         `Skinforge builds voxel-overlay character models from 64x64 skin atlases, exports them as glTF, renders previews and serves them over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.ov.Config, c.ov)
			if err != nil {
				return err
			}
			c.cfg = cfg
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return err
			}
			c.log = logger.Named(cmd.Name())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	c.ov = config.RegisterFlags(fs)
	root.PersistentFlags().AddGoFlagSet(fs)

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.packsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	return root
}

// Execute runs the CLI with ctx.
func Execute(ctx context.Context) error {
	return New().RootCommand().ExecuteContext(ctx)
}

func (c *CLI) builder() *skin.Builder {
	return skin.NewBuilder(c.cfg.Builder.Options())
}

func (c *CLI) fetcher(ctx context.Context) (*assets.Fetcher, assets.Cache, error) {
	return assets.NewFetcherFromConfig(ctx, c.cfg.Assets, c.log)
}

// resolveSkin returns the skin reference named by args or by --pack and index.
func (c *CLI) resolveSkin(ctx context.Context, f catalog.Fetcher, args []string, index int) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if c.cfg.Viewer.Pack == "" {
		return "", ErrNoSkin
	}
	cat, err := catalog.Open(ctx, f, c.cfg.Viewer.Catalog)
	if err != nil {
		return "", err
	}
	p, err := cat.Pack(c.cfg.Viewer.Pack)
	if err != nil {
		return "", err
	}
	sk, err := p.Skin(index)
	if err != nil {
		return "", err
	}
	c.log.Debug("resolved skin", zap.String("pack", p.Name), zap.Int("index", index), zap.String("png", sk.PNG))
	return cat.Resolve(sk.PNG), nil
}

func closeCache(log *zap.Logger, cache assets.Cache) {
	if err := cache.Close(); err != nil {
		log.Warn("closing cache", zap.Error(err))
	}
}
