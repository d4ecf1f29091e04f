// Package camera provides the orbit camera used by the skin viewer.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target mgl32.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	// AutoRotate is added to the yaw every frame while the camera is idle.
	AutoRotate float32
	dragging   bool

	FOV       float32 // vertical field of view, degrees
	Near, Far float32
}

// New returns a camera framing a standing character.
func New() *OrbitCamera {
	return &OrbitCamera{
		Target:          mgl32.Vec3{0, 1.2, 0},
		Distance:        5.5,
		RotationX:       0.25,
		MinDistance:     1.6,
		MaxDistance:     6,
		MinPitch:        -1.4,
		MaxPitch:        1.4,
		DragSensitivity: 0.01,
		ZoomSensitivity: 0.1,
		AutoRotate:      0.003,
		FOV:             45,
		Near:            0.05,
		Far:             100,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	pitch, yaw := float64(c.RotationX), float64(c.RotationY)
	offset := mgl32.Vec3{
		float32(gomath.Cos(pitch) * gomath.Sin(yaw)),
		float32(gomath.Sin(pitch)),
		float32(gomath.Cos(pitch) * gomath.Cos(yaw)),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection for the given viewport size.
func (c *OrbitCamera) ProjectionMatrix(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// BeginDrag stops auto-rotation until EndDrag.
func (c *OrbitCamera) BeginDrag() { c.dragging = true }

// EndDrag resumes auto-rotation.
func (c *OrbitCamera) EndDrag() { c.dragging = false }

// Dragging reports whether a drag is in progress.
func (c *OrbitCamera) Dragging() bool { return c.dragging }

// HandleDrag updates rotation based on a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX = mgl32.Clamp(c.RotationX+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// Update advances auto-rotation by one frame.
func (c *OrbitCamera) Update() {
	if c.dragging {
		return
	}
	c.RotationY += c.AutoRotate
	if c.RotationY > 2*gomath.Pi {
		c.RotationY -= 2 * gomath.Pi
	}
}

// FitToBounds centers the camera on a bounding box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(min, max mgl32.Vec3) {
	c.Target = min.Add(max).Mul(0.5)
	size := max.Sub(min).Len()

	// Distance at which the bounding sphere fills the vertical field of view.
	half := float64(mgl32.DegToRad(c.FOV)) / 2
	c.Distance = mgl32.Clamp(float32(float64(size/2)/gomath.Sin(half)), c.MinDistance, c.MaxDistance)
}
