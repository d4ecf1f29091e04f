package viewer

import (
	"context"
	"fmt"

	"github.com/Faultbox/skinforge/pkg/atlas"
	"github.com/Faultbox/skinforge/pkg/skin"
)

// Fetcher returns the raw bytes behind a skin reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// SkinLoader fetches, decodes and assembles skins.
type SkinLoader struct {
	fetcher Fetcher
	builder *skin.Builder
}

// NewSkinLoader creates a loader using f for bytes and b for assembly.
func NewSkinLoader(f Fetcher, b *skin.Builder) *SkinLoader {
	return &SkinLoader{fetcher: f, builder: b}
}

// Load implements Loader.
func (l *SkinLoader) Load(ctx context.Context, ref string) (*skin.Model, error) {
	data, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := atlas.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	m, err := l.builder.BuildModel(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return m, nil
}
