package skin

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/skinforge/pkg/atlas"
)

// baseSkin returns an atlas whose base regions are opaque grey and whose overlay
// regions are fully transparent.
func baseSkin(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for _, p := range PartsFor(atlas.New(img)) {
		for _, r := range p.FaceRects() {
			fill(img, r, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	return img
}

func fill(img *image.NRGBA, r atlas.Rect, c color.NRGBA) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func TestBuildPartDimensions(t *testing.T) {
	a := atlas.New(baseSkin(64, 64))
	b := NewBuilder(DefaultOptions())
	for _, spec := range Canonical() {
		p, err := b.BuildPart(a, spec)
		if err != nil {
			t.Fatalf("%s: %v", spec.Name, err)
		}
		want := [3]float64{
			float64(spec.Width()) / 8,
			float64(spec.Height()) / 8,
			float64(spec.Depth()) / 8,
		}
		if p.Size != want {
			t.Errorf("%s: size %v, want %v", spec.Name, p.Size, want)
		}
		if p.Position != spec.Position {
			t.Errorf("%s: position %v, want %v", spec.Name, p.Position, spec.Position)
		}
		for f, m := range p.Materials {
			if m == nil {
				t.Fatalf("%s: missing %s material", spec.Name, Face(f))
			}
			if m.Rect != spec.FaceRect(Face(f)) {
				t.Errorf("%s %s: sampled %v, want %v", spec.Name, Face(f), m.Rect, spec.FaceRect(Face(f)))
			}
		}
	}
}

func TestBuildPartOutOfBounds(t *testing.T) {
	a := atlas.New(image.NewNRGBA(image.Rect(0, 0, 16, 16)))
	_, err := NewBuilder(DefaultOptions()).BuildPart(a, Canonical()[1])
	if !errors.Is(err, atlas.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestVoxelizeTransparent(t *testing.T) {
	a := atlas.New(baseSkin(64, 64))
	voxels, err := NewBuilder(DefaultOptions()).Voxelize(a, Canonical()[0])
	if err != nil {
		t.Fatalf("Voxelize failed: %v", err)
	}
	if len(voxels) != 0 {
		t.Errorf("expected no voxels for a transparent overlay, got %d", len(voxels))
	}
}

func TestVoxelizeSolidColor(t *testing.T) {
	img := baseSkin(64, 64)
	head := Canonical()[0]
	r, _ := head.OverlayRect()
	fill(img, r, color.NRGBA{R: 200, G: 10, B: 30, A: 128})

	voxels, err := NewBuilder(DefaultOptions()).Voxelize(atlas.New(img), head)
	if err != nil {
		t.Fatalf("Voxelize failed: %v", err)
	}
	if len(voxels) != r.W*r.H {
		t.Fatalf("expected %d voxels, got %d", r.W*r.H, len(voxels))
	}
	want := color.NRGBA{R: 200, G: 10, B: 30, A: 255}
	for i, v := range voxels {
		if v.Color != want {
			t.Fatalf("voxel %d color %+v, want %+v", i, v.Color, want)
		}
		if v.Size != DefaultVoxelSize {
			t.Fatalf("voxel %d size %v", i, v.Size)
		}
	}
}

func TestVoxelizeThreshold(t *testing.T) {
	img := baseSkin(64, 64)
	head := Canonical()[0]
	r, _ := head.OverlayRect()
	img.SetNRGBA(r.X, r.Y, color.NRGBA{A: DefaultAlphaThreshold})       // at threshold: skipped
	img.SetNRGBA(r.X+1, r.Y, color.NRGBA{A: DefaultAlphaThreshold + 1}) // above: kept
	img.SetNRGBA(r.X+2, r.Y+3, color.NRGBA{R: 1, A: 255})

	b := NewBuilder(DefaultOptions())
	voxels, err := b.Voxelize(atlas.New(img), head)
	if err != nil {
		t.Fatalf("Voxelize failed: %v", err)
	}
	if len(voxels) != 2 {
		t.Fatalf("expected 2 voxels, got %d", len(voxels))
	}

	opts := DefaultOptions()
	opts.AlphaThreshold = 0
	voxels, _ = NewBuilder(opts).Voxelize(atlas.New(img), head)
	if len(voxels) != 3 {
		t.Errorf("threshold 0: expected 3 voxels, got %d", len(voxels))
	}
}

func TestVoxelizePlacement(t *testing.T) {
	img := baseSkin(64, 64)
	head := Canonical()[0]
	r, _ := head.OverlayRect()
	img.SetNRGBA(r.X, r.Y, color.NRGBA{R: 255, A: 255})             // top-left
	img.SetNRGBA(r.X+r.W-1, r.Y+r.H-1, color.NRGBA{G: 255, A: 255}) // bottom-right

	voxels, err := NewBuilder(DefaultOptions()).Voxelize(atlas.New(img), head)
	if err != nil {
		t.Fatalf("Voxelize failed: %v", err)
	}
	if len(voxels) != 2 {
		t.Fatalf("expected 2 voxels, got %d", len(voxels))
	}
	topLeft, bottomRight := voxels[0], voxels[1]

	if topLeft.Center[0] != -3.5/8 || topLeft.Center[1] != 3.5/8 {
		t.Errorf("top-left voxel at %v", topLeft.Center)
	}
	if bottomRight.Center[0] != 3.5/8 || bottomRight.Center[1] != -3.5/8 {
		t.Errorf("bottom-right voxel at %v", bottomRight.Center)
	}
	front := float64(head.Depth()) / 16
	for _, v := range voxels {
		if v.Center[2] != front+DefaultOverlayOffset {
			t.Errorf("voxel z %v, want %v", v.Center[2], front+DefaultOverlayOffset)
		}
		if v.Center[2]-v.Size/2 <= front {
			t.Errorf("voxel at z %v touches the front face at %v", v.Center[2], front)
		}
	}
}

func TestVoxelizeNoOverlay(t *testing.T) {
	a := atlas.New(baseSkin(64, 32))
	_, err := NewBuilder(DefaultOptions()).Voxelize(a, Legacy()[1])
	if !errors.Is(err, ErrNoOverlay) {
		t.Errorf("expected ErrNoOverlay, got %v", err)
	}
}

func TestBuildPartOverlayOutOfBounds(t *testing.T) {
	// Canonical torso on a legacy atlas: base fits, overlay does not.
	a := atlas.New(baseSkin(64, 32))
	p, err := NewBuilder(DefaultOptions()).BuildPart(a, Canonical()[1])
	if err != nil {
		t.Fatalf("BuildPart failed: %v", err)
	}
	if !errors.Is(p.OverlayErr, atlas.ErrOutOfBounds) {
		t.Errorf("expected overlay error, got %v", p.OverlayErr)
	}
	if len(p.Voxels) != 0 {
		t.Errorf("expected no voxels, got %d", len(p.Voxels))
	}
	for f, m := range p.Materials {
		if m == nil {
			t.Errorf("missing %s material", Face(f))
		}
	}
}

func TestBuildModelTransparentOverlay(t *testing.T) {
	m, err := NewBuilder(DefaultOptions()).BuildModel(atlas.New(baseSkin(64, 64)))
	if err != nil {
		t.Fatalf("BuildModel failed: %v", err)
	}
	s := m.Stats()
	if s.Parts != 6 || s.Voxels != 0 || s.Materials != 36 {
		t.Errorf("unexpected stats %+v", s)
	}
	names := []string{PartHead, PartTorso, PartRightArm, PartLeftArm, PartRightLeg, PartLeftLeg}
	for i, name := range names {
		if m.Parts[i].Name != name {
			t.Errorf("part %d is %s, want %s", i, m.Parts[i].Name, name)
		}
	}
	if m.Placeholder {
		t.Error("built model must not be a placeholder")
	}
}

func TestBuildModelWithOverlay(t *testing.T) {
	img := baseSkin(64, 64)
	total := 0
	for _, p := range Canonical() {
		r, _ := p.OverlayRect()
		fill(img, r, color.NRGBA{B: 255, A: 255})
		total += r.Area()
	}

	m, err := NewBuilder(DefaultOptions()).BuildModel(atlas.New(img))
	if err != nil {
		t.Fatalf("BuildModel failed: %v", err)
	}
	if got := m.Stats().Voxels; got != total {
		t.Errorf("expected %d voxels, got %d", total, got)
	}

	opts := DefaultOptions()
	opts.DisableOverlay = true
	m, _ = NewBuilder(opts).BuildModel(atlas.New(img))
	if got := m.Stats().Voxels; got != 0 {
		t.Errorf("overlay disabled: expected 0 voxels, got %d", got)
	}
}

func TestBuildModelLegacy(t *testing.T) {
	m, err := NewBuilder(DefaultOptions()).BuildModel(atlas.New(baseSkin(64, 32)))
	if err != nil {
		t.Fatalf("BuildModel failed: %v", err)
	}
	if len(m.Parts) != 6 {
		t.Fatalf("expected 6 parts, got %d", len(m.Parts))
	}
	for _, p := range m.Parts {
		if p.OverlayErr != nil {
			t.Errorf("%s: unexpected overlay error %v", p.Name, p.OverlayErr)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	m := Placeholder()
	if !m.Placeholder || len(m.Parts) != 1 {
		t.Fatalf("unexpected placeholder %+v", m)
	}
	if m.Parts[0].Size != [3]float64{1, 2, 0.5} {
		t.Errorf("placeholder size %v", m.Parts[0].Size)
	}
	b := m.Bounds()
	if b.Min[1] != 0 || b.Max[1] != 2 {
		t.Errorf("placeholder bounds %+v", b)
	}
}

func TestModelBounds(t *testing.T) {
	m, _ := NewBuilder(DefaultOptions()).BuildModel(atlas.New(baseSkin(64, 64)))
	b := m.Bounds()
	if b.Min[1] != 0 || b.Max[1] != 4 {
		t.Errorf("expected height 0..4, got %v..%v", b.Min[1], b.Max[1])
	}
	if b.Min[0] != -1 || b.Max[0] != 1 {
		t.Errorf("expected width -1..1, got %v..%v", b.Min[0], b.Max[0])
	}
	if m.Part(PartHead) == nil || m.Part("tail") != nil {
		t.Error("Part lookup by name failed")
	}
}

func TestEmptyModelBounds(t *testing.T) {
	if b := (&Model{}).Bounds(); b != (Bounds{}) {
		t.Errorf("empty model bounds %+v, want zero", b)
	}
}
