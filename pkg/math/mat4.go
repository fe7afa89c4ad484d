package math

import "math"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4FromFloat64 narrows a column-major float64 matrix, as stored by glTF.
func Mat4FromFloat64(src [16]float64) Mat4 {
	var m Mat4
	for i, v := range src {
		m[i] = float32(v)
	}
	return m
}

// Mat4FromColumns builds a matrix from four column vectors.
func Mat4FromColumns(cols [4][4]float32) Mat4 {
	var m Mat4
	for c := 0; c < 4; c++ {
		copy(m[c*4:c*4+4], cols[c][:])
	}
	return m
}

// Perspective returns a perspective projection matrix.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a view matrix looking from eye to center with up direction.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation matrix around the Y axis.
// angle is in radians.
func RotateY(angle float32) Mat4 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// FromTRS composes Translate(t) * Rotate(r) * Scale(s) without the two
// intermediate matrix products.
func FromTRS(t Vec3, r Quat, s Vec3) Mat4 {
	m := r.ToMat4()
	for i := 0; i < 3; i++ {
		m[i] *= s.X
		m[4+i] *= s.Y
		m[8+i] *= s.Z
	}
	m[12], m[13], m[14] = t.X, t.Y, t.Z
	return m
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p [3]float32) [3]float32 {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	w := m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15]
	if w != 0 && w != 1 {
		return [3]float32{x / w, y / w, z / w}
	}
	return [3]float32{x, y, z}
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat4) ApproxEqual(other Mat4, eps float32) bool {
	for i := range m {
		if absf(m[i]-other[i]) > eps {
			return false
		}
	}
	return true
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// Inverse returns the inverse of the matrix, evaluated in float64.
// Returns identity if the matrix is singular.
func (m Mat4) Inverse() Mat4 {
	a00, a01, a02, a03 := float64(m[0]), float64(m[1]), float64(m[2]), float64(m[3])
	a10, a11, a12, a13 := float64(m[4]), float64(m[5]), float64(m[6]), float64(m[7])
	a20, a21, a22, a23 := float64(m[8]), float64(m[9]), float64(m[10]), float64(m[11])
	a30, a31, a32, a33 := float64(m[12]), float64(m[13]), float64(m[14]), float64(m[15])

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if det == 0 {
		return Identity()
	}
	inv := 1.0 / det

	return Mat4{
		float32((a11*b11 - a12*b10 + a13*b09) * inv),
		float32((a02*b10 - a01*b11 - a03*b09) * inv),
		float32((a31*b05 - a32*b04 + a33*b03) * inv),
		float32((a22*b04 - a21*b05 - a23*b03) * inv),
		float32((a12*b08 - a10*b11 - a13*b07) * inv),
		float32((a00*b11 - a02*b08 + a03*b07) * inv),
		float32((a32*b02 - a30*b05 - a33*b01) * inv),
		float32((a20*b05 - a22*b02 + a23*b01) * inv),
		float32((a10*b10 - a11*b08 + a13*b06) * inv),
		float32((a01*b08 - a00*b10 - a03*b06) * inv),
		float32((a30*b04 - a31*b02 + a33*b00) * inv),
		float32((a21*b02 - a20*b04 - a23*b00) * inv),
		float32((a11*b07 - a10*b09 - a12*b06) * inv),
		float32((a00*b09 - a01*b07 + a02*b06) * inv),
		float32((a31*b01 - a30*b03 - a32*b00) * inv),
		float32((a20*b03 - a21*b01 + a22*b00) * inv),
	}
}
