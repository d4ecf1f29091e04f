// Package export writes assembled models as glTF documents and PNG previews.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/skinforge/pkg/skin"
)

// Generator is recorded in the asset block of every exported document.
const Generator = "skinforge"

// Document converts m into a glTF document. Each part becomes a node at its
// position holding one textured primitive per face and, when the part has
// overlay voxels, one vertex-colored primitive.
func Document(m *skin.Model) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	b := &builder{doc: doc}
	root := &gltf.Node{Name: "skin"}
	doc.Nodes = append(doc.Nodes, root)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	for _, p := range m.Parts {
		var (
			mesh *gltf.Mesh
			err  error
		)
		if m.Placeholder {
			mesh = b.placeholderMesh(p, m)
		} else {
			mesh, err = b.partMesh(p)
		}
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", p.Name, err)
		}
		doc.Meshes = append(doc.Meshes, mesh)
		node := &gltf.Node{
			Name:        p.Name,
			Mesh:        gltf.Index(uint32(len(doc.Meshes) - 1)),
			Translation: [3]float32{float32(p.Position[0]), float32(p.Position[1]), float32(p.Position[2])},
		}
		doc.Nodes = append(doc.Nodes, node)
		root.Children = append(root.Children, uint32(len(doc.Nodes)-1))
	}
	return doc, nil
}

type builder struct {
	doc     *gltf.Document
	sampler *uint32
}

// nearestSampler returns the shared sampler keeping pixel edges hard.
func (b *builder) nearestSampler() *uint32 {
	if b.sampler == nil {
		b.doc.Samplers = append(b.doc.Samplers, &gltf.Sampler{
			MagFilter: gltf.MagNearest,
			MinFilter: gltf.MinNearest,
		})
		b.sampler = gltf.Index(uint32(len(b.doc.Samplers) - 1))
	}
	return b.sampler
}

func (b *builder) addMaterial(mat *gltf.Material) *uint32 {
	b.doc.Materials = append(b.doc.Materials, mat)
	return gltf.Index(uint32(len(b.doc.Materials) - 1))
}

func (b *builder) primitive(prim skin.Primitive, withColor bool) *gltf.Primitive {
	n := len(prim.Vertices)
	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	uvs := make([][2]float32, n)
	colors := make([][4]float32, n)
	for i, v := range prim.Vertices {
		positions[i] = v.Position
		normals[i] = v.Normal
		uvs[i] = v.TexCoord
		colors[i] = v.Color
	}

	attrs := map[string]uint32{
		gltf.POSITION: modeler.WritePosition(b.doc, positions),
		gltf.NORMAL:   modeler.WriteNormal(b.doc, normals),
	}
	if withColor {
		attrs[gltf.COLOR_0] = modeler.WriteColor(b.doc, colors)
	} else {
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(b.doc, uvs)
	}
	return &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(modeler.WriteIndices(b.doc, prim.Indices)),
	}
}

func (b *builder) partMesh(p *skin.Part) (*gltf.Mesh, error) {
	mesh := &gltf.Mesh{Name: p.Name}
	faces := p.BoxMesh()
	for f, mat := range p.Materials {
		if mat == nil {
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, mat.Texture); err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s_%s", p.Name, skin.Face(f))
		img, err := modeler.WriteImage(b.doc, name, "image/png", &buf)
		if err != nil {
			return nil, err
		}
		b.doc.Textures = append(b.doc.Textures, &gltf.Texture{
			Sampler: b.nearestSampler(),
			Source:  gltf.Index(img),
		})
		tex := uint32(len(b.doc.Textures) - 1)

		alpha := gltf.AlphaOpaque
		if mat.Transparent {
			alpha = gltf.AlphaBlend
		}
		prim := b.primitive(faces[f], false)
		prim.Material = b.addMaterial(&gltf.Material{
			Name:      name,
			AlphaMode: alpha,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor:  &[4]float32{1, 1, 1, 1},
				BaseColorTexture: &gltf.TextureInfo{Index: tex},
				MetallicFactor:   gltf.Float(0),
				RoughnessFactor:  gltf.Float(1),
			},
		})
		mesh.Primitives = append(mesh.Primitives, prim)
	}

	if len(p.Voxels) > 0 {
		prim := b.primitive(p.VoxelMesh(), true)
		prim.Material = b.addMaterial(&gltf.Material{
			Name:      p.Name + "_overlay",
			AlphaMode: gltf.AlphaOpaque,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float32{1, 1, 1, 1},
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(1),
			},
		})
		mesh.Primitives = append(mesh.Primitives, prim)
	}
	return mesh, nil
}

func (b *builder) placeholderMesh(p *skin.Part, m *skin.Model) *gltf.Mesh {
	rgba := [4]float32{
		float32(m.Color.R) / 255,
		float32(m.Color.G) / 255,
		float32(m.Color.B) / 255,
		1,
	}
	prim := b.primitive(p.SolidMesh(rgba), true)
	prim.Material = b.addMaterial(&gltf.Material{
		Name:      "placeholder",
		AlphaMode: gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	})
	return &gltf.Mesh{Name: p.Name, Primitives: []*gltf.Primitive{prim}}
}

// EncodeGLB writes m as binary glTF.
func EncodeGLB(m *skin.Model, w io.Writer) error {
	doc, err := Document(m)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

// WriteGLTF saves m to path: binary for .glb, JSON with an embedded buffer otherwise.
func WriteGLTF(m *skin.Model, path string) error {
	doc, err := Document(m)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(doc, path)
	}
	for _, buf := range doc.Buffers {
		if buf.URI == "" {
			buf.URI = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Data)
		}
	}
	return gltf.Save(doc, path)
}
