// Package server exposes the catalog, built models and previews over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/catalog"
	"github.com/Faultbox/skinforge/pkg/skin"
)

// Fetcher returns the bytes behind a skin reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Options configures a Server.
type Options struct {
	Catalog *catalog.Catalog
	Fetcher Fetcher
	Builder *skin.Builder
	// Cache holds built artifacts. Nil disables artifact caching.
	Cache    assets.Cache
	CacheTTL time.Duration
	// PreviewScale is used when a preview request has no scale parameter.
	PreviewScale int
	Logger       *zap.Logger
}

// Server serves the skinforge HTTP API.
type Server struct {
	opts   Options
	log    *zap.Logger
	router chi.Router
}

// New creates a server and its routes.
func New(opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = assets.NewNullCache()
	}
	if opts.Builder == nil {
		opts.Builder = skin.NewBuilder(skin.DefaultOptions())
	}
	if opts.PreviewScale < 1 {
		opts.PreviewScale = 8
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{opts: opts, log: log}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/packs", func(r chi.Router) {
		r.Get("/", s.handlePacks)
		r.Route("/{pack}", func(r chi.Router) {
			r.Get("/", s.handlePack)
			r.Get("/skins/{index}/model.glb", s.handleModel)
			r.Get("/skins/{index}/preview.png", s.handlePreview)
		})
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request with its status and latency.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("latency", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
