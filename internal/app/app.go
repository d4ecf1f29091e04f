// Package app runs the interactive skin viewer: window, input, camera and frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/catalog"
	"github.com/Faultbox/skinforge/internal/config"
	"github.com/Faultbox/skinforge/internal/engine/camera"
	"github.com/Faultbox/skinforge/internal/engine/input"
	"github.com/Faultbox/skinforge/internal/engine/renderer"
	"github.com/Faultbox/skinforge/internal/engine/window"
	"github.com/Faultbox/skinforge/internal/export"
	"github.com/Faultbox/skinforge/internal/logger"
	"github.com/Faultbox/skinforge/internal/viewer"
	"github.com/Faultbox/skinforge/pkg/skin"
)

const title = "Skinforge"

var _ viewer.Backend = (*renderer.Renderer)(nil)

// App is the viewer application.
type App struct {
	ctx      context.Context
	cfg      *config.Config
	log      *zap.Logger
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	view     *viewer.Viewer
	browser  *viewer.Browser
	cache    assets.Cache
	fetcher  *assets.Fetcher
	changes  chan string
	shots    *export.Screenshots
	cancel   context.CancelFunc
	running  bool
}

// New opens the window, loads the catalog and starts showing the first skin.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, log: logger.Named("app")}
	a.ctx, a.cancel = context.WithCancel(ctx)
	ctx = a.ctx

	f, cache, err := assets.NewFetcherFromConfig(ctx, cfg.Assets, logger.Named("assets"))
	if err != nil {
		return nil, err
	}
	a.cache = cache
	a.fetcher = f

	cat, err := catalog.Open(ctx, f, cfg.Viewer.Catalog)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	a.log.Info("catalog loaded", zap.String("catalog", cfg.Viewer.Catalog), zap.Int("packs", len(cat.Packs)))

	// The window creates the GL context the renderer needs.
	a.window, err = window.New(window.FromViewer(title, cfg.Viewer), logger.Named("window"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	w, h := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.DefaultConfig(w, h), logger.Named("renderer"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.camera = camera.New()
	a.camera.AutoRotate = cfg.Viewer.AutoRotate
	a.shots = export.NewScreenshots("screenshots", "skinforge")

	loader := viewer.NewSkinLoader(f, skin.NewBuilder(cfg.Builder.Options()))
	a.view = viewer.New(loader, a.renderer, viewer.WithLogger(logger.Named("viewer")))
	a.browser, err = viewer.NewBrowser(ctx, cat, a.view, cfg.Viewer.Pack)
	if err != nil && !errors.Is(err, catalog.ErrIndex) {
		a.Close()
		return nil, err
	}
	a.window.SetTitle(a.title())
	if cfg.Viewer.Reload {
		a.watch()
	}

	a.log.Info("viewer initialized")
	return a, nil
}

func (a *App) title() string {
	return title + " – " + a.browser.Title()
}

// Run drives the frame loop until the user quits or the context passed to New is canceled.
func (a *App) Run() error {
	a.running = true
	frameCount := 0
	fpsTimer := time.Now()
	lastTitle := ""

	a.log.Info("starting frame loop")
	for a.running && a.ctx.Err() == nil {
		a.handleInput(a.input.Poll())
		select {
		case path := <-a.changes:
			a.reload(path)
		default:
		}

		if a.view.Update() {
			a.frame()
		}
		a.camera.Update()

		a.renderer.Begin()
		if m, _ := a.view.Current(); m != nil {
			a.renderer.Draw(m, a.camera.ViewMatrix(), a.camera.ProjectionMatrix(a.renderer.Size()))
		}
		a.window.SwapBuffers()

		if t := a.title(); t != lastTitle {
			a.window.SetTitle(t)
			lastTitle = t
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// watch reports changes to the catalog's local skin files on a.changes.
func (a *App) watch() {
	refs := a.browser.LocalRefs()
	if len(refs) == 0 {
		return
	}
	a.changes = make(chan string, 16)
	log := logger.Named("watch")
	go func() {
		err := assets.WatchFiles(a.ctx, refs, assets.DefaultDebounce, log, func(path string) {
			select {
			case a.changes <- path:
			default:
			}
		})
		if err != nil && a.ctx.Err() == nil {
			log.Warn("skin reload disabled", zap.Error(err))
		}
	}()
}

// reload drops the cached bytes of a changed skin and shows it again when it is on screen.
func (a *App) reload(path string) {
	if err := a.fetcher.Invalidate(a.ctx, path); err != nil {
		a.log.Warn("cache invalidate failed", zap.Error(err))
	}
	cur, err := filepath.Abs(a.browser.Ref())
	if err != nil || cur != path {
		return
	}
	a.log.Info("skin changed, reloading", zap.String("path", path))
	if err := a.browser.Reload(); err != nil {
		a.log.Warn("reload", zap.Error(err))
	}
}

// frame points the camera at a newly displayed model.
func (a *App) frame() {
	m, ref := a.view.Current()
	if m == nil {
		return
	}
	b := m.Bounds()
	a.camera.Target = mgl32.Vec3{
		float32(b.Min[0]+b.Max[0]) / 2,
		float32(b.Min[1]+b.Max[1]) / 2,
		float32(b.Min[2]+b.Max[2]) / 2,
	}
	a.log.Info("skin displayed", zap.String("ref", ref), zap.Bool("placeholder", m.Placeholder))
}

func (a *App) handleInput(f *input.Frame) {
	if f.Resized {
		a.renderer.Resize(a.window.DrawableSize())
	}
	if f.DragStarted {
		a.camera.BeginDrag()
	}
	if f.DragX != 0 || f.DragY != 0 {
		a.camera.HandleDrag(f.DragX, f.DragY)
	}
	if f.DragEnded {
		a.camera.EndDrag()
	}
	if f.Wheel != 0 {
		a.camera.HandleZoom(f.Wheel)
	}

	for _, act := range f.Actions {
		var err error
		switch act {
		case input.ActionQuit:
			a.running = false
		case input.ActionNextSkin:
			err = a.browser.NextSkin()
		case input.ActionPrevSkin:
			err = a.browser.PrevSkin()
		case input.ActionNextPack:
			err = a.browser.NextPack()
		case input.ActionPrevPack:
			err = a.browser.PrevPack()
		case input.ActionResetCamera:
			a.camera = camera.New()
			a.camera.AutoRotate = a.cfg.Viewer.AutoRotate
			a.frame()
		case input.ActionScreenshot:
			a.screenshot()
		}
		if err != nil {
			a.log.Warn("navigation", zap.Error(err))
		}
	}
}

func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases the displayed model and shuts the window down.
func (a *App) Close() {
	a.log.Info("closing viewer")
	a.cancel()
	if a.view != nil {
		a.view.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("closing cache", zap.Error(err))
		}
	}
}
