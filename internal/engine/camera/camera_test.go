package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skinrig/pkg/math"
)

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	center := math.Vec3{X: 1, Y: 2, Z: 3}
	c.FitToBounds(center, 10)

	if c.Center != center {
		t.Errorf("Center = %+v, want %+v", c.Center, center)
	}
	want := 10 / float32(gomath.Sin(gomath.Pi/8))
	if d := c.Distance - want; d > 1e-3 || d < -1e-3 {
		t.Errorf("Distance = %v, want %v", c.Distance, want)
	}
	if c.MinDistance != 1 {
		t.Errorf("MinDistance = %v, want 1", c.MinDistance)
	}
	got := c.Position().Sub(center).Length()
	if d := got - c.Distance; d > 1e-3 || d < -1e-3 {
		t.Errorf("camera is %v from center, want %v", got, c.Distance)
	}
}

func TestFitToBoundsDegenerateRadius(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(math.Vec3{}, 0)
	if c.Distance <= 0 || c.MinDistance <= 0 {
		t.Errorf("degenerate radius gave distance %v min %v", c.Distance, c.MinDistance)
	}
}

func TestHandleZoomClamps(t *testing.T) {
	tests := []struct {
		name  string
		delta float32
		want  func(c *OrbitCamera) float32
	}{
		{"zoom in", 1000, func(c *OrbitCamera) float32 { return c.MinDistance }},
		{"zoom out", -1000, func(c *OrbitCamera) float32 { return c.MaxDistance }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.HandleZoom(tt.delta)
			if c.Distance != tt.want(c) {
				t.Errorf("Distance = %v, want %v", c.Distance, tt.want(c))
			}
		})
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	if c.RotationX != c.MaxPitch {
		t.Errorf("RotationX = %v, want %v", c.RotationX, c.MaxPitch)
	}
	c.HandleDrag(100, -1e6)
	if c.RotationX != c.MinPitch {
		t.Errorf("RotationX = %v, want %v", c.RotationX, c.MinPitch)
	}
	if d := c.RotationY + 0.5; d > 1e-5 || d < -1e-5 {
		t.Errorf("RotationY = %v, want -0.5", c.RotationY)
	}
}

func TestPositionFront(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{}
	c.Distance = 5
	c.RotationX = 0
	c.RotationY = 0
	if p := c.Position(); !p.ApproxEqual(math.Vec3{Z: 5}, 1e-5) {
		t.Errorf("Position() = %+v, want (0,0,5)", p)
	}
}
