package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/catalog"
	"github.com/Faultbox/skinforge/internal/export"
	"github.com/Faultbox/skinforge/pkg/atlas"
	"github.com/Faultbox/skinforge/pkg/skin"
)

// PlaceholderHeader is set on artifacts built from the fallback model.
const PlaceholderHeader = "X-Skin-Placeholder"

const maxPreviewScale = 32

type skinSummary struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Model   string `json:"model"`
	Preview string `json:"preview"`
}

type packSummary struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Count       int           `json:"count"`
	Skins       []skinSummary `json:"skins,omitempty"`
}

func summarize(p *catalog.Pack, withSkins bool) packSummary {
	sum := packSummary{
		Name:        p.Name,
		Description: p.Description,
		Location:    p.Location,
		Count:       len(p.Skins),
	}
	if !withSkins {
		return sum
	}
	base := "/api/packs/" + url.PathEscape(p.Name) + "/skins/"
	for i, s := range p.Skins {
		sum.Skins = append(sum.Skins, skinSummary{
			Index:   i,
			Name:    s.DisplayName(i),
			Model:   base + strconv.Itoa(i) + "/model.glb",
			Preview: base + strconv.Itoa(i) + "/preview.png",
		})
	}
	return sum
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	packs := s.opts.Catalog.Filter(r.URL.Query().Get("q"))
	out := make([]packSummary, 0, len(packs))
	for i := range packs {
		out = append(out, summarize(&packs[i], false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	p, ok := s.pack(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(p, true))
}

func (s *Server) pack(w http.ResponseWriter, r *http.Request) (*catalog.Pack, bool) {
	name := chi.URLParam(r, "pack")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	p, err := s.opts.Catalog.Pack(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return p, true
}

// skinRef resolves the pack and index parameters to a fetchable reference.
func (s *Server) skinRef(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := s.pack(w, r)
	if !ok {
		return "", false
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "skin index must be an integer")
		return "", false
	}
	sk, err := p.Skin(idx)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return s.opts.Catalog.Resolve(sk.PNG), true
}

// buildModel fetches and assembles a skin. Undecodable images become the placeholder.
func (s *Server) buildModel(ctx context.Context, ref string) (*skin.Model, error) {
	data, err := s.opts.Fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	a, err := atlas.Decode(data)
	if err != nil {
		s.log.Warn("skin decode failed, serving placeholder", zap.String("ref", ref), zap.Error(err))
		return skin.Placeholder(), nil
	}
	m, err := s.opts.Builder.BuildModel(a)
	if err != nil {
		s.log.Warn("skin build failed, serving placeholder", zap.String("ref", ref), zap.Error(err))
		return skin.Placeholder(), nil
	}
	for _, p := range m.Parts {
		if p.OverlayErr != nil {
			s.log.Debug("overlay skipped", zap.String("ref", ref), zap.String("part", p.Name), zap.Error(p.OverlayErr))
		}
	}
	return m, nil
}

// artifact serves a cached rendering of ref or builds it with render.
func (s *Server) artifact(w http.ResponseWriter, r *http.Request, key, ref, contentType string, render func(*skin.Model) ([]byte, error)) {
	ctx := r.Context()
	if data, ok, err := s.opts.Cache.Get(ctx, key); err != nil {
		s.log.Warn("artifact cache get failed", zap.Error(err))
	} else if ok {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
		return
	}

	m, err := s.buildModel(ctx, ref)
	if err != nil {
		s.log.Warn("skin fetch failed", zap.String("ref", ref), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	data, err := render(m)
	if err != nil {
		s.log.Error("render failed", zap.String("ref", ref), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	if m.Placeholder {
		w.Header().Set(PlaceholderHeader, "true")
	} else if err := s.opts.Cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		s.log.Warn("artifact cache set failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// optionsKey distinguishes artifacts built with different builder settings.
func (s *Server) optionsKey() string {
	o := s.opts.Builder.Options()
	return fmt.Sprintf("a%d/o%g/v%g/d%t", o.AlphaThreshold, o.OverlayOffset, o.VoxelSize, o.DisableOverlay)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.skinRef(w, r)
	if !ok {
		return
	}
	key := assets.Key("glb", ref+"|"+s.optionsKey())
	s.artifact(w, r, key, ref, "model/gltf-binary", func(m *skin.Model) ([]byte, error) {
		var buf bytes.Buffer
		if err := export.EncodeGLB(m, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	scale := s.opts.PreviewScale
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPreviewScale {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("scale must be between 1 and %d", maxPreviewScale))
			return
		}
		scale = n
	}
	ref, ok := s.skinRef(w, r)
	if !ok {
		return
	}
	key := assets.Key("png", fmt.Sprintf("%s|%s|x%d", ref, s.optionsKey(), scale))
	s.artifact(w, r, key, ref, "image/png", func(m *skin.Model) ([]byte, error) {
		var buf bytes.Buffer
		if err := export.EncodePNG(&buf, export.RenderPreview(m, scale)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}
