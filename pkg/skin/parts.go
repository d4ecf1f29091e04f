// Package skin assembles textured box models with voxelized overlays from a skin atlas.
package skin

import (
	"github.com/Faultbox/skinforge/pkg/atlas"
)

// Face identifies one side of a part box. The model faces +Z, so the character's
// right side is the model's -X side.
type Face int

// Faces in material order.
const (
	FaceRight Face = iota
	FaceLeft
	FaceTop
	FaceBottom
	FaceFront
	FaceBack
)

// FaceCount is the number of faces of a part box.
const FaceCount = 6

var faceNames = [FaceCount]string{"right", "left", "top", "bottom", "front", "back"}

func (f Face) String() string {
	if f < 0 || int(f) >= FaceCount {
		return "unknown"
	}
	return faceNames[f]
}

// PartSpec describes one body part in atlas pixel units.
type PartSpec struct {
	Name     string
	Size     [3]int     // width, height, depth in pixels
	UV       [2]int     // base unwrap origin
	Position [3]float64 // box center in model units
	Overlay  *[2]int    // origin of the overlay rectangle, nil when the part has none
}

// Width returns the part width in pixels.
func (p PartSpec) Width() int { return p.Size[0] }

// Height returns the part height in pixels.
func (p PartSpec) Height() int { return p.Size[1] }

// Depth returns the part depth in pixels.
func (p PartSpec) Depth() int { return p.Size[2] }

// FaceRect returns the atlas rectangle of face f in the standard cross unwrap.
func (p PartSpec) FaceRect(f Face) atlas.Rect {
	u, v := p.UV[0], p.UV[1]
	w, h, d := p.Size[0], p.Size[1], p.Size[2]
	switch f {
	case FaceRight:
		return atlas.Rect{X: u, Y: v + d, W: d, H: h}
	case FaceLeft:
		return atlas.Rect{X: u + d + w, Y: v + d, W: d, H: h}
	case FaceTop:
		return atlas.Rect{X: u + d, Y: v, W: w, H: d}
	case FaceBottom:
		return atlas.Rect{X: u + d + w, Y: v, W: w, H: d}
	case FaceFront:
		return atlas.Rect{X: u + d, Y: v + d, W: w, H: h}
	default:
		return atlas.Rect{X: u + 2*d + w, Y: v + d, W: w, H: h}
	}
}

// FaceRects returns all six face rectangles in material order.
func (p PartSpec) FaceRects() [FaceCount]atlas.Rect {
	var rects [FaceCount]atlas.Rect
	for f := FaceRight; f <= FaceBack; f++ {
		rects[f] = p.FaceRect(f)
	}
	return rects
}

// OverlayRect returns the overlay rectangle, which has the size of the front face.
func (p PartSpec) OverlayRect() (atlas.Rect, bool) {
	if p.Overlay == nil {
		return atlas.Rect{}, false
	}
	return atlas.Rect{X: p.Overlay[0], Y: p.Overlay[1], W: p.Size[0], H: p.Size[1]}, true
}

func uv(u, v int) *[2]int {
	return &[2]int{u, v}
}

// Part names used by the canonical tables.
const (
	PartHead     = "head"
	PartTorso    = "torso"
	PartRightArm = "right_arm"
	PartLeftArm  = "left_arm"
	PartRightLeg = "right_leg"
	PartLeftLeg  = "left_leg"
)

// Canonical returns the six body parts of a 64x64 skin. Overlay origins point at
// the front face of each overlay layer.
func Canonical() []PartSpec {
	return []PartSpec{
		{Name: PartHead, Size: [3]int{8, 8, 8}, UV: [2]int{0, 0}, Position: [3]float64{0, 3.5, 0}, Overlay: uv(40, 8)},
		{Name: PartTorso, Size: [3]int{8, 12, 4}, UV: [2]int{16, 16}, Position: [3]float64{0, 2.25, 0}, Overlay: uv(20, 36)},
		{Name: PartRightArm, Size: [3]int{4, 12, 4}, UV: [2]int{40, 16}, Position: [3]float64{-0.75, 2.25, 0}, Overlay: uv(44, 36)},
		{Name: PartLeftArm, Size: [3]int{4, 12, 4}, UV: [2]int{32, 48}, Position: [3]float64{0.75, 2.25, 0}, Overlay: uv(52, 52)},
		{Name: PartRightLeg, Size: [3]int{4, 12, 4}, UV: [2]int{0, 16}, Position: [3]float64{-0.25, 0.75, 0}, Overlay: uv(4, 36)},
		{Name: PartLeftLeg, Size: [3]int{4, 12, 4}, UV: [2]int{16, 48}, Position: [3]float64{0.25, 0.75, 0}, Overlay: uv(4, 52)},
	}
}

// Legacy returns the parts of a 64x32 skin: the left limbs reuse the right limb
// regions and only the head has an overlay layer.
func Legacy() []PartSpec {
	return []PartSpec{
		{Name: PartHead, Size: [3]int{8, 8, 8}, UV: [2]int{0, 0}, Position: [3]float64{0, 3.5, 0}, Overlay: uv(40, 8)},
		{Name: PartTorso, Size: [3]int{8, 12, 4}, UV: [2]int{16, 16}, Position: [3]float64{0, 2.25, 0}},
		{Name: PartRightArm, Size: [3]int{4, 12, 4}, UV: [2]int{40, 16}, Position: [3]float64{-0.75, 2.25, 0}},
		{Name: PartLeftArm, Size: [3]int{4, 12, 4}, UV: [2]int{40, 16}, Position: [3]float64{0.75, 2.25, 0}},
		{Name: PartRightLeg, Size: [3]int{4, 12, 4}, UV: [2]int{0, 16}, Position: [3]float64{-0.25, 0.75, 0}},
		{Name: PartLeftLeg, Size: [3]int{4, 12, 4}, UV: [2]int{0, 16}, Position: [3]float64{0.25, 0.75, 0}},
	}
}

// IsLegacy reports whether a uses the old layout: at most half as tall as it is wide,
// as in the 64x32 format.
func IsLegacy(a *atlas.Atlas) bool {
	return a.Height()*2 <= a.Width()
}

// PartsFor picks the part table matching the atlas layout.
func PartsFor(a *atlas.Atlas) []PartSpec {
	if IsLegacy(a) {
		return Legacy()
	}
	return Canonical()
}
