package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skinrig/internal/engine/skin"
	"github.com/Faultbox/skinrig/pkg/math"
)

var (
	ErrIndexOutOfRange = errors.New("model: index out of range")
	ErrBoneOutOfRange  = errors.New("model: vertex references unknown bone")
)

// Validate checks the index buffer and bone references against the mesh.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: mesh %q index %d is %d, have %d vertices", ErrIndexOutOfRange, m.Name, i, idx, n)
		}
	}
	if m.Skin == nil {
		return nil
	}
	bones := int32(m.Skin.Len())
	for i := range m.Vertices {
		v := &m.Vertices[i]
		for s, w := range v.Weights {
			if w != 0 && (v.Bones[s] < 0 || v.Bones[s] >= bones) {
				return fmt.Errorf("%w: mesh %q vertex %d bone %d", ErrBoneOutOfRange, m.Name, i, v.Bones[s])
			}
		}
	}
	return nil
}

// Skinned reports whether the mesh is drawn through the bone palette.
func (m *Mesh) Skinned() bool {
	return m.Skin != nil && m.Skin.Len() > 0
}

// Triangles returns the number of triangles in the index buffer.
func (m *Mesh) Triangles() int { return len(m.Indices) / 3 }

// ComputeBounds recalculates Bounds from the vertex positions.
func (m *Mesh) ComputeBounds() {
	m.Bounds = EmptyBounds()
	for i := range m.Vertices {
		m.Bounds.Extend(m.Vertices[i].Position)
	}
}

// EmptyBounds returns an inverted box that any Extend call will replace.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// Valid reports whether at least one point was added.
func (b Bounds) Valid() bool {
	return b.Min[0] <= b.Max[0]
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Union grows the box to contain o.
func (b *Bounds) Union(o Bounds) {
	if !o.Valid() {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Transform returns the box enclosing the eight corners of b under m.
func (b Bounds) Transform(m math.Mat4) Bounds {
	out := EmptyBounds()
	if !b.Valid() {
		return out
	}
	for c := 0; c < 8; c++ {
		p := b.Min
		if c&1 != 0 {
			p[0] = b.Max[0]
		}
		if c&2 != 0 {
			p[1] = b.Max[1]
		}
		if c&4 != 0 {
			p[2] = b.Max[2]
		}
		out.Extend(m.TransformPoint(p))
	}
	return out
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// Radius returns half the diagonal length.
func (b Bounds) Radius() float32 {
	d := math.Vec3FromArray(b.Max).Sub(math.Vec3FromArray(b.Min))
	return d.Length() / 2
}

// GenerateNormals computes area-weighted face normals for an indexed
// triangle list, then averages normals of vertices sharing a position so
// seams split by UVs still shade smoothly. Degenerate results point up.
func GenerateNormals(vertices []skin.Vertex, indices []uint32) {
	sums := make([]math.Vec3, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			continue
		}
		p0 := math.Vec3FromArray(vertices[i0].Position)
		p1 := math.Vec3FromArray(vertices[i1].Position)
		p2 := math.Vec3FromArray(vertices[i2].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		sums[i0] = sums[i0].Add(n)
		sums[i1] = sums[i1].Add(n)
		sums[i2] = sums[i2].Add(n)
	}

	// Group vertices by quantized position
	const epsilon float32 = 0.001
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		p := vertices[i].Position
		key := [3]int32{int32(p[0] / epsilon), int32(p[1] / epsilon), int32(p[2] / epsilon)}
		posMap[key] = append(posMap[key], i)
	}

	up := [3]float32{0, 1, 0}
	for _, idxs := range posMap {
		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(sums[idx])
		}
		n := up
		if sum.Length() > 1e-8 {
			n = sum.Normalize().Array()
		}
		for _, idx := range idxs {
			vertices[idx].Normal = n
		}
	}
}
