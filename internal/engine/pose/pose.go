// Package pose evaluates world transforms for every node of a graph.
package pose

import (
	"github.com/Faultbox/skinrig/internal/engine/anim"
	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/pkg/math"
)

// Pose maps node names to world transforms. An evaluated pose has an entry
// for every node of its graph.
type Pose map[string]math.Mat4

// Source tells where a resolved transform came from.
type Source int

const (
	// NotFound means neither pose had the node and identity was used.
	NotFound Source = iota
	// Animated means the transform came from the animated pose.
	Animated
	// Bind means the transform came from the bind pose.
	Bind
)

func (s Source) String() string {
	switch s {
	case Animated:
		return "animated"
	case Bind:
		return "bind"
	default:
		return "not-found"
	}
}

// Evaluate computes the world transform of every node of g at ticks.
// With a nil clip the result is the bind pose.
func Evaluate(g *graph.Graph, clip *anim.Clip, ticks float64) Pose {
	p := make(Pose, g.Len())
	EvaluateInto(p, g, clip, ticks)
	return p
}

// EvaluateInto recomputes dst in place. Entries from a previous evaluation
// are discarded first so the result never mixes frames.
func EvaluateInto(dst Pose, g *graph.Graph, clip *anim.Clip, ticks float64) {
	clear(dst)
	g.Walk(func(n *graph.Node, parent math.Mat4) (math.Mat4, bool) {
		local := n.Rest
		if ch, ok := clip.Channels(n.Name); ok {
			local = ch.Local(ticks)
		}
		world := parent.Mul(local)
		dst[n.Name] = world
		return world, true
	})
}

// World returns the world transform of the named node.
func (p Pose) World(name string) (math.Mat4, bool) {
	m, ok := p[name]
	return m, ok
}

// Resolve looks name up in animated, then bind, then falls back to identity.
func Resolve(animated, bind Pose, name string) (math.Mat4, Source) {
	if m, ok := animated[name]; ok {
		return m, Animated
	}
	if m, ok := bind[name]; ok {
		return m, Bind
	}
	return math.Identity(), NotFound
}
