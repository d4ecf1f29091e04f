package skin

// Vertex is a mesh vertex ready for GPU upload or export.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32 // (0,0) is the top-left texel of the face texture
	Color    [4]float32
}

// Primitive is an indexed triangle list.
type Primitive struct {
	Vertices []Vertex
	Indices  []uint32
}

// faceFrame places a face texture on a unit cube: the corner holding the image's
// top-left texel, the axis image columns run along, and the axis image rows run along.
type faceFrame struct {
	origin [3]float32
	u, v   [3]float32
	normal [3]float32
}

// Frames for a cube spanning [-1,1] on every axis, seen from outside.
var faceFrames = [FaceCount]faceFrame{
	FaceRight:  {origin: [3]float32{-1, 1, -1}, u: [3]float32{0, 0, 2}, v: [3]float32{0, -2, 0}, normal: [3]float32{-1, 0, 0}},
	FaceLeft:   {origin: [3]float32{1, 1, 1}, u: [3]float32{0, 0, -2}, v: [3]float32{0, -2, 0}, normal: [3]float32{1, 0, 0}},
	FaceTop:    {origin: [3]float32{-1, 1, -1}, u: [3]float32{2, 0, 0}, v: [3]float32{0, 0, 2}, normal: [3]float32{0, 1, 0}},
	FaceBottom: {origin: [3]float32{-1, -1, 1}, u: [3]float32{2, 0, 0}, v: [3]float32{0, 0, -2}, normal: [3]float32{0, -1, 0}},
	FaceFront:  {origin: [3]float32{-1, 1, 1}, u: [3]float32{2, 0, 0}, v: [3]float32{0, -2, 0}, normal: [3]float32{0, 0, 1}},
	FaceBack:   {origin: [3]float32{1, 1, -1}, u: [3]float32{-2, 0, 0}, v: [3]float32{0, -2, 0}, normal: [3]float32{0, 0, -1}},
}

var quadTexCoords = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// appendQuad adds one cube face scaled by half-extents and shifted to center.
// Winding is counter-clockwise when seen from outside.
func appendQuad(p *Primitive, f Face, center, half [3]float32, rgba [4]float32) {
	fr := faceFrames[f]
	base := uint32(len(p.Vertices))
	for i, tc := range quadTexCoords {
		var pos [3]float32
		for k := 0; k < 3; k++ {
			local := fr.origin[k] + fr.u[k]*tc[0] + fr.v[k]*tc[1]
			pos[k] = center[k] + local*half[k]
		}
		p.Vertices = append(p.Vertices, Vertex{
			Position: pos,
			Normal:   fr.normal,
			TexCoord: quadTexCoords[i],
			Color:    rgba,
		})
	}
	p.Indices = append(p.Indices, base, base+3, base+2, base, base+2, base+1)
}

func toVec3(v [3]float64) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// BoxMesh returns one primitive per face in material order, in part-local space.
func (p *Part) BoxMesh() [FaceCount]Primitive {
	half := toVec3([3]float64{p.Size[0] / 2, p.Size[1] / 2, p.Size[2] / 2})
	white := [4]float32{1, 1, 1, 1}
	var faces [FaceCount]Primitive
	for f := FaceRight; f <= FaceBack; f++ {
		appendQuad(&faces[f], f, [3]float32{}, half, white)
	}
	return faces
}

// SolidMesh returns the whole box as one primitive colored rgba.
func (p *Part) SolidMesh(rgba [4]float32) Primitive {
	half := toVec3([3]float64{p.Size[0] / 2, p.Size[1] / 2, p.Size[2] / 2})
	var prim Primitive
	for f := FaceRight; f <= FaceBack; f++ {
		appendQuad(&prim, f, [3]float32{}, half, rgba)
	}
	return prim
}

// VoxelMesh merges every voxel of the part into one vertex-colored primitive in
// part-local space. Adjacent voxels are not merged.
func (p *Part) VoxelMesh() Primitive {
	prim := Primitive{
		Vertices: make([]Vertex, 0, len(p.Voxels)*4*FaceCount),
		Indices:  make([]uint32, 0, len(p.Voxels)*6*FaceCount),
	}
	for _, v := range p.Voxels {
		h := float32(v.Size / 2)
		rgba := [4]float32{
			float32(v.Color.R) / 255,
			float32(v.Color.G) / 255,
			float32(v.Color.B) / 255,
			1,
		}
		for f := FaceRight; f <= FaceBack; f++ {
			appendQuad(&prim, f, toVec3(v.Center), [3]float32{h, h, h}, rgba)
		}
	}
	return prim
}
