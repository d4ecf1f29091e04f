package skin

import (
	"image/color"
	"testing"
)

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func TestBoxMeshWinding(t *testing.T) {
	p := &Part{Size: [3]float64{1, 1.5, 0.5}}
	for f, prim := range p.BoxMesh() {
		if len(prim.Vertices) != 4 || len(prim.Indices) != 6 {
			t.Fatalf("%s: %d vertices, %d indices", Face(f), len(prim.Vertices), len(prim.Indices))
		}
		for tri := 0; tri < 2; tri++ {
			a := prim.Vertices[prim.Indices[tri*3]].Position
			b := prim.Vertices[prim.Indices[tri*3+1]].Position
			c := prim.Vertices[prim.Indices[tri*3+2]].Position
			n := cross(sub(b, a), sub(c, a))
			if dot(n, prim.Vertices[0].Normal) <= 0 {
				t.Errorf("%s triangle %d is wound inward", Face(f), tri)
			}
		}
		for _, v := range prim.Vertices {
			// Every vertex of a face lies on the plane its normal points at.
			for k := 0; k < 3; k++ {
				if v.Normal[k] == 0 {
					continue
				}
				want := float32(p.Size[k]/2) * v.Normal[k]
				if v.Position[k] != want {
					t.Errorf("%s: vertex %v off plane %v", Face(f), v.Position, want)
				}
			}
		}
	}
}

func TestBoxMeshTexCoords(t *testing.T) {
	p := &Part{Size: [3]float64{1, 1, 1}}
	front := p.BoxMesh()[FaceFront]
	// The top-left texel of the front face sits at the top of the character's right side.
	tl := front.Vertices[0]
	if tl.TexCoord != [2]float32{0, 0} {
		t.Fatalf("first vertex tex coord %v", tl.TexCoord)
	}
	if tl.Position != [3]float32{-0.5, 0.5, 0.5} {
		t.Errorf("front top-left at %v", tl.Position)
	}
	top := p.BoxMesh()[FaceTop]
	if top.Vertices[0].Position != [3]float32{-0.5, 0.5, -0.5} {
		t.Errorf("top face top-left at %v", top.Vertices[0].Position)
	}
}

func TestVoxelMesh(t *testing.T) {
	p := &Part{
		Size: [3]float64{1, 1, 1},
		Voxels: []Voxel{
			{Center: [3]float64{0, 0, 0.62}, Size: 0.125, Color: color.NRGBA{R: 255, A: 255}},
			{Center: [3]float64{0.125, 0, 0.62}, Size: 0.125, Color: color.NRGBA{G: 255, A: 255}},
		},
	}
	prim := p.VoxelMesh()
	if len(prim.Vertices) != 2*24 || len(prim.Indices) != 2*36 {
		t.Fatalf("got %d vertices, %d indices", len(prim.Vertices), len(prim.Indices))
	}
	for _, idx := range prim.Indices {
		if int(idx) >= len(prim.Vertices) {
			t.Fatalf("index %d out of range", idx)
		}
	}
	if prim.Vertices[0].Color != [4]float32{1, 0, 0, 1} {
		t.Errorf("first voxel color %v", prim.Vertices[0].Color)
	}
	if prim.Vertices[24].Color != [4]float32{0, 1, 0, 1} {
		t.Errorf("second voxel color %v", prim.Vertices[24].Color)
	}
	for _, v := range prim.Vertices[:24] {
		if v.Position[2] < 0.62-0.0625-1e-6 || v.Position[2] > 0.62+0.0625+1e-6 {
			t.Fatalf("vertex %v outside first voxel", v.Position)
		}
	}
}

func TestSolidMesh(t *testing.T) {
	prim := Placeholder().Parts[0].SolidMesh([4]float32{0.5, 0.1, 0.1, 1})
	if len(prim.Vertices) != 24 || len(prim.Indices) != 36 {
		t.Fatalf("got %d vertices, %d indices", len(prim.Vertices), len(prim.Indices))
	}
	for _, v := range prim.Vertices {
		if v.Color != [4]float32{0.5, 0.1, 0.1, 1} {
			t.Fatalf("vertex color %v", v.Color)
		}
	}
}
