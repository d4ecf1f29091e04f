// Package renderer draws skin models with OpenGL and owns their GPU resources.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/engine/shader"
	"github.com/Faultbox/skinforge/pkg/skin"
)

var (
	// ErrUploaded is returned when a model is uploaded twice.
	ErrUploaded = errors.New("model already uploaded")
	// ErrGL is returned when the driver reports an error during upload.
	ErrGL = errors.New("opengl error")
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// ClearColor is the background in linear RGB.
	ClearColor [3]float32
	// Ambient and Diffuse are the light intensities; LightDir points towards the light.
	Ambient  float32
	Diffuse  float32
	LightDir mgl32.Vec3
}

// DefaultConfig returns a dark blue background lit from the upper front right.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		ClearColor: [3]float32{0.06, 0.07, 0.12},
		Ambient:    0.35,
		Diffuse:    1.0,
		LightDir:   mgl32.Vec3{5, 10, 7},
	}
}

type mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	texture       uint32
}

type gpuPart struct {
	model  mgl32.Mat4
	faces  []mesh
	voxels *mesh
}

type gpuModel struct {
	parts []gpuPart
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	program *shader.Program
	models  map[*skin.Model]*gpuModel
	log     *zap.Logger
}

// New creates a renderer. It must be called after the GL context exists.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config: cfg,
		models: make(map[*skin.Model]*gpuModel),
		log:    log,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.MULTISAMPLE)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)

	var err error
	r.program, err = shader.Compile(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases every uploaded model and the shader program.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("models", len(r.models)))
	for m := range r.models {
		r.Release(m)
	}
	r.program.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Upload creates the GPU buffers and textures for m.
func (r *Renderer) Upload(m *skin.Model) error {
	if _, ok := r.models[m]; ok {
		return ErrUploaded
	}
	gm := &gpuModel{}
	for _, p := range m.Parts {
		gp := gpuPart{model: mgl32.Translate3D(float32(p.Position[0]), float32(p.Position[1]), float32(p.Position[2]))}
		if m.Placeholder {
			c := m.Color
			solid := p.SolidMesh([4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1})
			gp.faces = append(gp.faces, uploadMesh(solid, 0))
		} else {
			for f, prim := range p.BoxMesh() {
				mat := p.Materials[f]
				if mat == nil {
					continue
				}
				gp.faces = append(gp.faces, uploadMesh(prim, uploadTexture(mat.Texture)))
			}
			if len(p.Voxels) > 0 {
				vm := uploadMesh(p.VoxelMesh(), 0)
				gp.voxels = &vm
			}
		}
		gm.parts = append(gm.parts, gp)
	}

	if code := gl.GetError(); code != gl.NO_ERROR {
		deleteModel(gm)
		return fmt.Errorf("%w: 0x%x", ErrGL, code)
	}
	r.models[m] = gm
	r.log.Debug("model uploaded", zap.Int("parts", len(gm.parts)), zap.Bool("placeholder", m.Placeholder))
	return nil
}

// Release deletes the GPU resources of m. Unknown models are ignored.
func (r *Renderer) Release(m *skin.Model) {
	gm, ok := r.models[m]
	if !ok {
		return
	}
	deleteModel(gm)
	delete(r.models, m)
	r.log.Debug("model released", zap.Int("parts", len(gm.parts)))
}

// Uploaded reports how many models hold GPU resources.
func (r *Renderer) Uploaded() int {
	return len(r.models)
}

// Draw renders m if it has been uploaded.
func (r *Renderer) Draw(m *skin.Model, view, projection mgl32.Mat4) {
	gm, ok := r.models[m]
	if !ok {
		return
	}

	r.program.Use()
	light := r.config.LightDir.Normalize()
	gl.Uniform3f(r.program.Uniform("uLightDir"), light[0], light[1], light[2])
	gl.Uniform1f(r.program.Uniform("uAmbient"), r.config.Ambient)
	gl.Uniform1f(r.program.Uniform("uDiffuse"), r.config.Diffuse)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.program.Uniform("uTexture"), 0)

	locMVP := r.program.Uniform("uMVP")
	locModel := r.program.Uniform("uModel")
	locUseTex := r.program.Uniform("uUseTexture")
	viewProj := projection.Mul4(view)

	// Opaque voxels first so the blended face textures composite over them.
	for i := range gm.parts {
		p := &gm.parts[i]
		if p.voxels == nil {
			continue
		}
		mvp := viewProj.Mul4(p.model)
		gl.UniformMatrix4fv(locMVP, 1, false, &mvp[0])
		gl.UniformMatrix4fv(locModel, 1, false, &p.model[0])
		gl.Uniform1i(locUseTex, 0)
		drawMesh(p.voxels)
	}
	for i := range gm.parts {
		p := &gm.parts[i]
		mvp := viewProj.Mul4(p.model)
		gl.UniformMatrix4fv(locMVP, 1, false, &mvp[0])
		gl.UniformMatrix4fv(locModel, 1, false, &p.model[0])
		for j := range p.faces {
			face := &p.faces[j]
			if face.texture != 0 {
				gl.Uniform1i(locUseTex, 1)
				gl.BindTexture(gl.TEXTURE_2D, face.texture)
			} else {
				gl.Uniform1i(locUseTex, 0)
			}
			drawMesh(face)
		}
	}
	gl.BindVertexArray(0)
}

// ReadPixels returns the RGBA framebuffer contents, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

func drawMesh(m *mesh) {
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
}

func uploadMesh(prim skin.Primitive, texture uint32) mesh {
	m := mesh{indexCount: int32(len(prim.Indices)), texture: texture}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(skin.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(prim.Vertices)*vertexSize, unsafe.Pointer(&prim.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)
	// Color
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, int32(vertexSize), 8*4)
	gl.EnableVertexAttribArray(3)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(prim.Indices)*4, unsafe.Pointer(&prim.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return m
}

// uploadTexture creates a nearest-filtered texture. Rows are uploaded top first,
// matching texture coordinate (0,0) at the top-left texel.
func uploadTexture(img *image.NRGBA) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return id
}

func deleteMesh(m *mesh) {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	if m.texture != 0 {
		gl.DeleteTextures(1, &m.texture)
	}
}

func deleteModel(gm *gpuModel) {
	for i := range gm.parts {
		p := &gm.parts[i]
		for j := range p.faces {
			deleteMesh(&p.faces[j])
		}
		if p.voxels != nil {
			deleteMesh(p.voxels)
		}
	}
	gm.parts = nil
}
