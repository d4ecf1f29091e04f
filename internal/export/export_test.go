package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/skinforge/pkg/atlas"
	"github.com/Faultbox/skinforge/pkg/skin"
)

var (
	grey = color.NRGBA{R: 90, G: 90, B: 90, A: 255}
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func fill(img *image.NRGBA, r atlas.Rect, c color.NRGBA) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// testModel builds a 64x64 skin with grey bases, a red head front and one blue
// voxel in the head overlay's top-left corner.
func testModel(t *testing.T) *skin.Model {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	parts := skin.Canonical()
	for _, p := range parts {
		for _, r := range p.FaceRects() {
			fill(img, r, grey)
		}
	}
	fill(img, parts[0].FaceRect(skin.FaceFront), red)
	img.SetNRGBA(40, 8, blue)

	m, err := skin.NewBuilder(skin.DefaultOptions()).BuildModel(atlas.New(img))
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	return m
}

func TestDocument(t *testing.T) {
	doc, err := Document(testModel(t))
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Nodes) != 7 || len(doc.Meshes) != 6 {
		t.Fatalf("expected 7 nodes and 6 meshes, got %d and %d", len(doc.Nodes), len(doc.Meshes))
	}
	if len(doc.Nodes[0].Children) != 6 {
		t.Errorf("root should hold 6 parts, got %d", len(doc.Nodes[0].Children))
	}
	if len(doc.Images) != 36 || len(doc.Textures) != 36 || len(doc.Samplers) != 1 {
		t.Errorf("expected 36 images/textures and 1 sampler, got %d/%d/%d", len(doc.Images), len(doc.Textures), len(doc.Samplers))
	}
	if len(doc.Materials) != 37 {
		t.Errorf("expected 36 face materials plus 1 overlay, got %d", len(doc.Materials))
	}
	s := doc.Samplers[0]
	if s.MagFilter != gltf.MagNearest || s.MinFilter != gltf.MinNearest {
		t.Errorf("sampler must be nearest, got %v/%v", s.MagFilter, s.MinFilter)
	}

	head := doc.Nodes[1]
	if head.Name != skin.PartHead || head.Translation != [3]float32{0, 3.5, 0} {
		t.Errorf("unexpected head node %+v", head)
	}
	headMesh := doc.Meshes[*head.Mesh]
	if len(headMesh.Primitives) != 7 {
		t.Fatalf("head should have 6 faces and 1 overlay, got %d primitives", len(headMesh.Primitives))
	}
	overlay := headMesh.Primitives[6]
	if _, ok := overlay.Attributes[gltf.COLOR_0]; !ok {
		t.Error("overlay primitive needs vertex colors")
	}
	face := headMesh.Primitives[0]
	if _, ok := face.Attributes[gltf.TEXCOORD_0]; !ok {
		t.Error("face primitive needs texture coordinates")
	}
	if doc.Materials[*face.Material].AlphaMode != gltf.AlphaBlend {
		t.Error("face materials must blend")
	}
	if doc.Meshes[*doc.Nodes[2].Mesh].Primitives[0].Material == nil {
		t.Error("torso face without material")
	}
	if n := len(doc.Meshes[*doc.Nodes[2].Mesh].Primitives); n != 6 {
		t.Errorf("torso without overlay voxels should have 6 primitives, got %d", n)
	}
}

func TestDocumentPlaceholder(t *testing.T) {
	doc, err := Document(skin.Placeholder())
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Images) != 0 {
		t.Fatalf("expected one untextured mesh, got %d meshes %d images", len(doc.Meshes), len(doc.Images))
	}
	prim := doc.Meshes[0].Primitives[0]
	if _, ok := prim.Attributes[gltf.COLOR_0]; !ok {
		t.Error("placeholder needs vertex colors")
	}
	if doc.Nodes[1].Translation != [3]float32{0, 1, 0} {
		t.Errorf("placeholder node at %v", doc.Nodes[1].Translation)
	}
}

func TestEncodeGLB(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeGLB(testModel(t), &buf); err != nil {
		t.Fatalf("EncodeGLB: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Fatalf("missing GLB magic, got %q", buf.Bytes()[:4])
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Nodes) != 7 || doc.Asset.Generator != Generator {
		t.Errorf("decoded %d nodes, generator %q", len(doc.Nodes), doc.Asset.Generator)
	}
}

func TestWriteGLTF(t *testing.T) {
	m := testModel(t)
	for _, name := range []string{"steve.glb", "steve.gltf"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteGLTF(m, path); err != nil {
				t.Fatalf("WriteGLTF: %v", err)
			}
			doc, err := gltf.Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if len(doc.Meshes) != 6 {
				t.Errorf("expected 6 meshes, got %d", len(doc.Meshes))
			}
		})
	}
}

func TestRenderPreview(t *testing.T) {
	img := RenderPreview(testModel(t), 1)
	if img.Rect.Dx() != 16 || img.Rect.Dy() != 32 {
		t.Fatalf("expected 16x32 preview, got %v", img.Rect)
	}
	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"overlay voxel over head", 4, 0, blue},
		{"head front", 5, 0, red},
		{"torso front", 4, 8, grey},
		{"right arm front", 0, 8, grey},
		{"beside the head", 0, 0, color.NRGBA{}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("%s (%d,%d) = %+v, want %+v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderPreviewScale(t *testing.T) {
	img := RenderPreview(testModel(t), 4)
	if img.Rect.Dx() != 64 || img.Rect.Dy() != 128 {
		t.Fatalf("expected 64x128 preview, got %v", img.Rect)
	}
	for y := 0; y < 4; y++ {
		for x := 16; x < 20; x++ {
			if got := img.NRGBAAt(x, y); got != blue {
				t.Fatalf("scaled voxel pixel (%d,%d) = %+v", x, y, got)
			}
		}
	}
	if got := img.NRGBAAt(20, 0); got != red {
		t.Errorf("scaled head pixel = %+v", got)
	}
}

func TestRenderPreviewPlaceholder(t *testing.T) {
	img := RenderPreview(skin.Placeholder(), 0)
	if img.Rect.Dx() != 8 || img.Rect.Dy() != 16 {
		t.Fatalf("expected 8x16 preview, got %v", img.Rect)
	}
	if got := img.NRGBAAt(3, 7); got != skin.PlaceholderColor {
		t.Errorf("placeholder pixel %+v", got)
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "preview.png")
	if err := WritePNG(RenderPreview(skin.Placeholder(), 2), path); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	a, err := atlas.Decode(data)
	if err != nil {
		t.Fatalf("decode written PNG: %v", err)
	}
	if a.Width() != 16 || a.Height() != 32 {
		t.Errorf("unexpected size %dx%d", a.Width(), a.Height())
	}
}

func TestScreenshots(t *testing.T) {
	dir := t.TempDir()
	s := NewScreenshots(dir, "skinviewer")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue, as OpenGL returns it.
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	path, err := s.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if filepath.Base(path) != "skinviewer_2024-05-01_12-30-00.png" {
		t.Errorf("unexpected filename %s", path)
	}
	data, _ := os.ReadFile(path)
	a, err := atlas.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if a.At(0, 0) != blue || a.At(0, 1) != red {
		t.Errorf("rows not flipped: top %+v bottom %+v", a.At(0, 0), a.At(0, 1))
	}

	if _, err := s.CaptureFromPixels(pixels, 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
