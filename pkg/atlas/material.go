package atlas

import "image"

// Filter selects how a texture is sampled when magnified or minified.
type Filter int

const (
	// FilterNearest picks the closest texel, keeping hard pixel-art edges.
	FilterNearest Filter = iota
	// FilterLinear interpolates between texels.
	FilterLinear
)

func (f Filter) String() string {
	if f == FilterLinear {
		return "linear"
	}
	return "nearest"
}

// Material is a renderable surface whose color texture is one atlas sub-rectangle.
type Material struct {
	Rect        Rect
	Texture     *image.NRGBA
	Filter      Filter
	Transparent bool // alpha blending enabled
}

// SampleFace builds a nearest-filtered, alpha-blended material from rectangle r.
// r must lie inside the atlas; anything else is rejected with ErrOutOfBounds.
func (a *Atlas) SampleFace(r Rect) (*Material, error) {
	tex, err := a.Region(r)
	if err != nil {
		return nil, err
	}
	return &Material{
		Rect:        r,
		Texture:     tex,
		Filter:      FilterNearest,
		Transparent: true,
	}, nil
}

// HasTransparency reports whether any texel of the material is not fully opaque.
func (m *Material) HasTransparency() bool {
	pix := m.Texture.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			return true
		}
	}
	return false
}
