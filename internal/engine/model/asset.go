package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skinrig/internal/engine/anim"
	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/internal/engine/pose"
	"github.com/Faultbox/skinrig/pkg/math"
)

var (
	// ErrLoad wraps every failure to turn a file into an asset.
	ErrLoad = errors.New("model: load failed")
	// ErrNoMeshes is returned when a file yields nothing drawable.
	ErrNoMeshes = errors.New("model: no meshes")
)

// Asset is a loaded model: hierarchy, optional clip and meshes. It is
// read-only after NewAsset and may be shared by any number of instances.
// The zero Asset is empty and draws nothing.
type Asset struct {
	Name string

	graph       *graph.Graph
	clip        *anim.Clip
	meshes      []*Mesh
	rootInverse math.Mat4
	bounds      Bounds
}

// NewAsset validates the parts and assembles an asset. clip may be nil.
func NewAsset(name string, g *graph.Graph, clip *anim.Clip, meshes []*Mesh) (*Asset, error) {
	if g == nil {
		return nil, graph.ErrNoRoot
	}
	if len(meshes) == 0 {
		return nil, ErrNoMeshes
	}
	for _, m := range meshes {
		if _, ok := g.Find(m.Node); !ok {
			return nil, fmt.Errorf("model: mesh %q: unknown node %q", m.Name, m.Node)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if m.Skin != nil {
			if err := m.Skin.Validate(g); err != nil {
				return nil, fmt.Errorf("model: mesh %q: %w", m.Name, err)
			}
		}
	}

	a := &Asset{
		Name:        name,
		graph:       g,
		clip:        clip,
		meshes:      meshes,
		rootInverse: g.RootInverse(),
	}
	a.bounds = a.bindBounds()
	return a, nil
}

// bindBounds places every mesh box the way Draw would at the bind pose.
func (a *Asset) bindBounds() Bounds {
	bind := pose.Evaluate(a.graph, nil, 0)
	b := EmptyBounds()
	for _, m := range a.meshes {
		m.ComputeBounds()
		xf := a.rootInverse
		if !m.Skinned() {
			xf, _ = pose.Resolve(nil, bind, m.Node)
		}
		b.Union(m.Bounds.Transform(xf))
	}
	return b
}

// Empty reports whether the asset has nothing to draw.
func (a *Asset) Empty() bool {
	return a == nil || a.graph == nil || len(a.meshes) == 0
}

// Graph returns the scene graph.
func (a *Asset) Graph() *graph.Graph { return a.graph }

// Clip returns the animation clip, or nil for a static model.
func (a *Asset) Clip() *anim.Clip { return a.clip }

// Meshes returns the meshes in draw order.
func (a *Asset) Meshes() []*Mesh { return a.meshes }

// RootInverse is the inverse of the root node's rest transform, applied to
// every bone palette entry.
func (a *Asset) RootInverse() math.Mat4 { return a.rootInverse }

// Bounds returns the bind pose bounding box.
func (a *Asset) Bounds() Bounds { return a.bounds }

// Stats summarises an asset for logging and tooling.
type Stats struct {
	Nodes     int
	Meshes    int
	Skinned   int
	Vertices  int
	Triangles int
	Bones     int
}

// Stats counts the asset contents.
func (a *Asset) Stats() Stats {
	if a.Empty() {
		return Stats{}
	}
	s := Stats{Nodes: a.graph.Len(), Meshes: len(a.meshes)}
	for _, m := range a.meshes {
		s.Vertices += len(m.Vertices)
		s.Triangles += m.Triangles()
		if m.Skinned() {
			s.Skinned++
			s.Bones += m.Skin.Len()
		}
	}
	return s
}
