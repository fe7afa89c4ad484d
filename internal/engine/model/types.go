// Package model ties a scene graph, an optional clip and skinned meshes into
// a loaded asset, and drives per-instance playback and draw submission.
package model

import (
	"github.com/Faultbox/skinrig/internal/engine/skin"
	"github.com/Faultbox/skinrig/internal/engine/texture"
	"github.com/Faultbox/skinrig/pkg/math"
)

// Mesh holds one drawable primitive ready for GPU upload.
type Mesh struct {
	Name string
	// Node is the scene graph node the mesh hangs off.
	Node     string
	Vertices []skin.Vertex
	Indices  []uint32

	// Skin is nil for rigid meshes.
	Skin *skin.Binding

	TextureRef texture.Ref
	Texture    texture.Handle

	Bounds Bounds
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Renderer receives draw calls from Instance.Draw. Exactly one of the two
// methods is called per mesh per frame.
type Renderer interface {
	// DrawRigid draws a mesh placed by its node's world transform.
	DrawRigid(m *Mesh, node math.Mat4)
	// DrawSkinned draws a mesh deformed by the bone palette. The node
	// transform is identity.
	DrawSkinned(m *Mesh, palette *skin.Palette)
}
