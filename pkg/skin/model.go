package skin

import (
	"image/color"

	"github.com/Faultbox/skinforge/pkg/atlas"
)

// Voxel is one overlay cube. Center is relative to the owning part's position.
type Voxel struct {
	Center [3]float64
	Size   float64
	Color  color.NRGBA // always opaque
}

// Part is one assembled body part: a textured box plus its overlay voxels.
type Part struct {
	Name      string
	Position  [3]float64
	Size      [3]float64 // box dimensions in model units
	Materials [FaceCount]*atlas.Material
	Voxels    []Voxel

	// OverlayErr records why the overlay was skipped. The box is unaffected.
	OverlayErr error
}

// Model is an ordered set of parts built from one atlas.
type Model struct {
	Parts []*Part

	// Placeholder marks the untextured fallback shown when no atlas is available.
	Placeholder bool
	// Color is the flat color of a placeholder model.
	Color color.NRGBA
}

// Stats summarizes the size of a model.
type Stats struct {
	Parts     int
	Voxels    int
	Materials int
}

// Stats counts parts, voxels and face materials.
func (m *Model) Stats() Stats {
	var s Stats
	for _, p := range m.Parts {
		s.Parts++
		s.Voxels += len(p.Voxels)
		for _, mat := range p.Materials {
			if mat != nil {
				s.Materials++
			}
		}
	}
	return s
}

// Part returns the part with the given name, or nil.
func (m *Model) Part(name string) *Part {
	for _, p := range m.Parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Bounds holds an axis-aligned bounding box in model units.
type Bounds struct {
	Min [3]float64
	Max [3]float64
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float64 {
	return [3]float64{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Bounds returns the box enclosing every part box and voxel.
func (m *Model) Bounds() Bounds {
	if len(m.Parts) == 0 {
		return Bounds{}
	}
	b := Bounds{
		Min: [3]float64{1e10, 1e10, 1e10},
		Max: [3]float64{-1e10, -1e10, -1e10},
	}
	for _, p := range m.Parts {
		half := [3]float64{p.Size[0] / 2, p.Size[1] / 2, p.Size[2] / 2}
		growBounds(&b, p.Position, half)
		for _, v := range p.Voxels {
			c := p.WorldCenter(v)
			growBounds(&b, c, [3]float64{v.Size / 2, v.Size / 2, v.Size / 2})
		}
	}
	return b
}

// WorldCenter returns a voxel center in model space.
func (p *Part) WorldCenter(v Voxel) [3]float64 {
	return [3]float64{
		p.Position[0] + v.Center[0],
		p.Position[1] + v.Center[1],
		p.Position[2] + v.Center[2],
	}
}

func growBounds(b *Bounds, center, half [3]float64) {
	for i := 0; i < 3; i++ {
		if lo := center[i] - half[i]; lo < b.Min[i] {
			b.Min[i] = lo
		}
		if hi := center[i] + half[i]; hi > b.Max[i] {
			b.Max[i] = hi
		}
	}
}
