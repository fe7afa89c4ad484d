// Package camera provides the orbit camera used by the model viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/skinrig/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	FovY float32 // radians

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera framing a unit-sized model.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		FovY:            float32(gomath.Pi / 4),
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.FitToBounds(math.Vec3{}, 1)
	return c
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	pitch, yaw := float64(c.RotationX), float64(c.RotationY)
	offset := math.Vec3{
		X: c.Distance * float32(gomath.Cos(pitch)*gomath.Sin(yaw)),
		Y: c.Distance * float32(gomath.Sin(pitch)),
		Z: c.Distance * float32(gomath.Cos(pitch)*gomath.Cos(yaw)),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns a perspective projection whose clip planes
// follow the orbit distance.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	near := c.Distance * 0.01
	if near <= 0 {
		near = 0.01
	}
	far := c.Distance * 100
	return math.Perspective(c.FovY, aspect, near, far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = clamp(c.RotationX, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on a bounding sphere and backs off far
// enough for it to fill the vertical field of view. Zoom limits scale with
// the radius so tiny and huge models feel the same.
func (c *OrbitCamera) FitToBounds(center math.Vec3, radius float32) {
	if radius <= 0 {
		radius = 1
	}
	c.Center = center

	half := float64(c.FovY) / 2
	if half <= 0 {
		half = gomath.Pi / 8
	}
	c.Distance = radius / float32(gomath.Sin(half))
	c.MinDistance = radius * 0.1
	c.MaxDistance = c.Distance * 20

	c.RotationX = 0.3
	c.RotationY = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
