package skin

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/Faultbox/skinforge/pkg/atlas"
)

// Builder defaults.
const (
	// PixelsPerUnit is the number of atlas pixels per model unit.
	PixelsPerUnit = 8
	// DefaultAlphaThreshold is the alpha an overlay pixel must exceed to become a voxel.
	DefaultAlphaThreshold = 16
	// DefaultOverlayOffset is how far voxel centers sit in front of the box front face.
	DefaultOverlayOffset = 0.12
	// DefaultVoxelSize is the edge length of one voxel in model units.
	DefaultVoxelSize = 1.0 / PixelsPerUnit
)

// PlaceholderColor is the flat color of the fallback box.
var PlaceholderColor = color.NRGBA{R: 0x6b, G: 0x1f, B: 0x1f, A: 0xff}

// ErrNoOverlay is returned by Voxelize for parts without an overlay region.
var ErrNoOverlay = errors.New("skin: part has no overlay region")

// Options tune model assembly.
type Options struct {
	AlphaThreshold uint8
	OverlayOffset  float64
	VoxelSize      float64
	// DisableOverlay skips voxelization entirely.
	DisableOverlay bool
}

// DefaultOptions returns the builder defaults.
func DefaultOptions() Options {
	return Options{
		AlphaThreshold: DefaultAlphaThreshold,
		OverlayOffset:  DefaultOverlayOffset,
		VoxelSize:      DefaultVoxelSize,
	}
}

// Builder turns an atlas into a model.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder with the given options.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Options returns the builder options.
func (b *Builder) Options() Options {
	return b.opts
}

// BuildPart creates the textured box for spec and, when it has one, its overlay voxels.
// A face rectangle outside the atlas is an error; an unreadable overlay is not.
func (b *Builder) BuildPart(a *atlas.Atlas, spec PartSpec) (*Part, error) {
	part := &Part{
		Name:     spec.Name,
		Position: spec.Position,
		Size: [3]float64{
			float64(spec.Width()) / PixelsPerUnit,
			float64(spec.Height()) / PixelsPerUnit,
			float64(spec.Depth()) / PixelsPerUnit,
		},
	}
	for f, r := range spec.FaceRects() {
		mat, err := a.SampleFace(r)
		if err != nil {
			return nil, fmt.Errorf("part %s face %s: %w", spec.Name, Face(f), err)
		}
		part.Materials[f] = mat
	}

	if b.opts.DisableOverlay || spec.Overlay == nil {
		return part, nil
	}
	voxels, err := b.Voxelize(a, spec)
	if err != nil {
		part.OverlayErr = err
		return part, nil
	}
	part.Voxels = voxels
	return part, nil
}

// Voxelize emits one voxel per overlay pixel whose alpha exceeds the threshold.
// Columns map to +X, rows to -Y, and every voxel is pushed forward of the front face.
func (b *Builder) Voxelize(a *atlas.Atlas, spec PartSpec) ([]Voxel, error) {
	r, ok := spec.OverlayRect()
	if !ok {
		return nil, ErrNoOverlay
	}
	region, err := a.Region(r)
	if err != nil {
		return nil, fmt.Errorf("part %s overlay: %w", spec.Name, err)
	}

	w, h := r.W, r.H
	z := float64(spec.Depth())/(2*PixelsPerUnit) + b.opts.OverlayOffset
	var voxels []Voxel
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := region.NRGBAAt(col, row)
			if c.A <= b.opts.AlphaThreshold {
				continue
			}
			voxels = append(voxels, Voxel{
				Center: [3]float64{
					(float64(col) - float64(w)/2 + 0.5) / PixelsPerUnit,
					(float64(h)/2 - float64(row) - 0.5) / PixelsPerUnit,
					z,
				},
				Size:  b.opts.VoxelSize,
				Color: color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff},
			})
		}
	}
	return voxels, nil
}

// BuildModel assembles every part of the layout matching the atlas.
func (b *Builder) BuildModel(a *atlas.Atlas) (*Model, error) {
	return b.BuildParts(a, PartsFor(a))
}

// BuildParts assembles the given parts in order.
func (b *Builder) BuildParts(a *atlas.Atlas, specs []PartSpec) (*Model, error) {
	m := &Model{Parts: make([]*Part, 0, len(specs))}
	for _, spec := range specs {
		p, err := b.BuildPart(a, spec)
		if err != nil {
			return nil, err
		}
		m.Parts = append(m.Parts, p)
	}
	return m, nil
}

// Placeholder returns the untextured 1x2x0.5 box shown when an atlas cannot be used.
func Placeholder() *Model {
	return &Model{
		Parts: []*Part{{
			Name:     "placeholder",
			Position: [3]float64{0, 1, 0},
			Size:     [3]float64{1, 2, 0.5},
		}},
		Placeholder: true,
		Color:       PlaceholderColor,
	}
}
