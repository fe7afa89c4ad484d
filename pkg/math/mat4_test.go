package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	if result != m {
		t.Errorf("M * I should equal M: got %v, want %v", result, m)
	}
}

func TestMulOrder(t *testing.T) {
	// T * S scales first, then translates
	m := Translate(10, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint([3]float32{1, 1, 1})
	want := [3]float32{12, 2, 2}
	if got != want {
		t.Errorf("T*S point: got %v, want %v", got, want)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	result := m.TransformPoint([3]float32{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result[0]) > 0.001 || abs(result[1]) > 0.001 || abs(result[2]+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestFromTRSMatchesProduct(t *testing.T) {
	tr := Vec3{1, -2, 3}
	rot := QuatFromAxisAngle(Vec3{0, 1, 0}, 0.7)
	sc := Vec3{2, 0.5, 3}

	got := FromTRS(tr, rot, sc)
	want := Translate(tr.X, tr.Y, tr.Z).Mul(rot.ToMat4()).Mul(Scale(sc.X, sc.Y, sc.Z))

	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("FromTRS: got %v, want %v", got, want)
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(5, -3, 12)},
		{"scale", Scale(2, 4, 0.5)},
		{"trs", FromTRS(Vec3{1, 2, 3}, QuatFromAxisAngle(Vec3{1, 0, 0}, 1.1), Vec3{1.5, 1.5, 1.5})},
		{"perspective", Perspective(1, 1.5, 0.1, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := tt.m.Mul(tt.m.Inverse())
			if !product.ApproxEqual(Identity(), 1e-4) {
				t.Errorf("M * inverse(M) = %v, want identity", product)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	if got := Scale(0, 1, 1).Inverse(); got != Identity() {
		t.Errorf("singular inverse: got %v, want identity", got)
	}
}

func TestMat4FromFloat64(t *testing.T) {
	src := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}
	m := Mat4FromFloat64(src)
	if m != Translate(4, 5, 6) {
		t.Errorf("Mat4FromFloat64: got %v", m)
	}
}

func TestMat4FromColumns(t *testing.T) {
	cols := [4][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{7, 8, 9, 1},
	}
	if got := Mat4FromColumns(cols); got != Translate(7, 8, 9) {
		t.Errorf("Mat4FromColumns: got %v", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.0, 0.1, 100.0)

	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})

	p := m.TransformPoint(eye.Array())
	if abs(p[0]) > 1e-5 || abs(p[1]) > 1e-5 || abs(p[2]) > 1e-5 {
		t.Errorf("eye in view space: got %v, want origin", p)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
