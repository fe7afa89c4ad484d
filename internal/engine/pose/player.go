package pose

import (
	"github.com/Faultbox/skinrig/internal/engine/anim"
	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/pkg/math"
)

// Player drives one clip over one graph. It owns the playback clock and
// both poses; the graph and clip are shared read-only.
// A Player is not safe for concurrent use.
type Player struct {
	graph *graph.Graph
	clip  *anim.Clip

	animTime float64 // seconds
	ticks    float64

	animated Pose
	bind     Pose
}

// NewPlayer evaluates the bind pose once and the animated pose at time zero.
// clip may be nil, in which case only the bind pose is available.
func NewPlayer(g *graph.Graph, clip *anim.Clip) *Player {
	p := &Player{
		graph: g,
		clip:  clip,
		bind:  Evaluate(g, nil, 0),
	}
	if clip != nil {
		p.animated = Evaluate(g, clip, 0)
	}
	return p
}

// Advance moves the clock by dt seconds and re-evaluates the animated pose.
// Without a clip it does nothing.
func (p *Player) Advance(dt float64) {
	if p.clip == nil {
		return
	}
	p.SetTime(p.animTime + dt)
}

// SetTime jumps the clock to seconds and re-evaluates.
func (p *Player) SetTime(seconds float64) {
	if p.clip == nil {
		return
	}
	p.animTime = seconds
	p.ticks = p.clip.Ticks(seconds)
	EvaluateInto(p.animated, p.graph, p.clip, p.ticks)
}

// Reset rewinds to time zero.
func (p *Player) Reset() { p.SetTime(0) }

// Time returns the accumulated playback time in seconds.
func (p *Player) Time() float64 { return p.animTime }

// Ticks returns the wrapped clip time of the current pose.
func (p *Player) Ticks() float64 { return p.ticks }

// Clip returns the clip being played, or nil.
func (p *Player) Clip() *anim.Clip { return p.clip }

// Animated returns the current animated pose; nil without a clip.
func (p *Player) Animated() Pose { return p.animated }

// Bind returns the bind pose.
func (p *Player) Bind() Pose { return p.bind }

// Resolve looks name up in the animated pose, then the bind pose.
func (p *Player) Resolve(name string) (math.Mat4, Source) {
	return Resolve(p.animated, p.bind, name)
}
