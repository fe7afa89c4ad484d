package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromArray converts glTF-ordered (x, y, z, w) components into a Quat.
func QuatFromArray(a [4]float32) Quat {
	return Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := float64(angle) / 2
	s := float32(math.Sin(halfAngle))
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: float32(math.Cos(halfAngle)),
	}
}

// Length returns the quaternion norm.
func (q Quat) Length() float32 {
	return float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
}

// Normalize returns a unit quaternion. Degenerate input yields identity.
func (q Quat) Normalize() Quat {
	length := q.Length()
	if length < 1e-6 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Negate flips every component; the result encodes the same rotation.
func (q Quat) Negate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
}

// Slerp performs shortest-path spherical linear interpolation and returns a
// unit quaternion. t should be in range [0, 1].
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := q.Dot(other)

	// q and -q are the same rotation; flip to take the shorter arc
	if dot < 0 {
		other = other.Negate()
		dot = -dot
	}

	// Nearly parallel: sin(theta) is too small to divide by
	if dot > 0.9995 {
		s := 1 - t
		return Quat{
			X: q.X*s + other.X*t,
			Y: q.Y*s + other.Y*t,
			Z: q.Z*s + other.Z*t,
			W: q.W*s + other.W*t,
		}.Normalize()
	}

	theta0 := math.Acos(float64(dot))
	sinTheta0 := math.Sin(theta0)
	s0 := float32(math.Sin((1-float64(t))*theta0) / sinTheta0)
	s1 := float32(math.Sin(float64(t)*theta0) / sinTheta0)

	return Quat{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}.Normalize()
}

// Mul multiplies two quaternions (combines rotations, other applied first).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
