package anim

import (
	"errors"
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/skinrig/pkg/math"
)

// DefaultTicksPerSecond is used when the source data leaves the rate unset.
const DefaultTicksPerSecond = 25.0

// ErrNoTracks is returned when a node's channel set has no tracks at all.
var ErrNoTracks = errors.New("anim: channel set has no tracks")

// Channels holds the transform tracks of one node. A nil or empty track
// contributes its identity value (zero translation, identity rotation,
// unit scale).
type Channels struct {
	Translation VecTrack
	Rotation    QuatTrack
	Scale       VecTrack
}

// Validate checks every present track.
func (c *Channels) Validate() error {
	if len(c.Translation) == 0 && len(c.Rotation) == 0 && len(c.Scale) == 0 {
		return ErrNoTracks
	}
	if len(c.Translation) > 0 {
		if err := c.Translation.Validate(); err != nil {
			return fmt.Errorf("translation: %w", err)
		}
	}
	if len(c.Rotation) > 0 {
		if err := c.Rotation.Validate(); err != nil {
			return fmt.Errorf("rotation: %w", err)
		}
	}
	if len(c.Scale) > 0 {
		if err := c.Scale.Validate(); err != nil {
			return fmt.Errorf("scale: %w", err)
		}
	}
	return nil
}

// Sample returns the translation, rotation and scale at ticks.
func (c *Channels) Sample(ticks float64) (math.Vec3, math.Quat, math.Vec3) {
	p := c.Translation.Sample(ticks)
	r := c.Rotation.Sample(ticks)
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if len(c.Scale) > 0 {
		s = c.Scale.Sample(ticks)
	}
	return p, r, s
}

// Local returns Translation(p) * Rotation(r) * Scale(s) at ticks.
func (c *Channels) Local(ticks float64) math.Mat4 {
	p, r, s := c.Sample(ticks)
	return math.FromTRS(p, r, s)
}

// Clip is one animation: node-name keyed channels plus timing.
// A Clip is immutable once loading finishes and can be shared freely.
type Clip struct {
	Name           string
	Duration       float64 // ticks
	TicksPerSecond float64

	channels map[string]*Channels
}

// NewClip creates an empty clip. A non-positive rate falls back to
// DefaultTicksPerSecond.
func NewClip(name string, duration, ticksPerSecond float64) *Clip {
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	return &Clip{
		Name:           name,
		Duration:       duration,
		TicksPerSecond: ticksPerSecond,
		channels:       make(map[string]*Channels),
	}
}

// SetChannels attaches the tracks for node, replacing any previous set.
func (c *Clip) SetChannels(node string, ch Channels) error {
	if err := ch.Validate(); err != nil {
		return fmt.Errorf("anim: node %q: %w", node, err)
	}
	if c.channels == nil {
		c.channels = make(map[string]*Channels)
	}
	c.channels[node] = &ch
	return nil
}

// Channels returns the tracks for node. Safe on a nil clip.
func (c *Clip) Channels(node string) (*Channels, bool) {
	if c == nil {
		return nil, false
	}
	ch, ok := c.channels[node]
	return ch, ok
}

// Len returns the number of animated nodes.
func (c *Clip) Len() int {
	if c == nil {
		return 0
	}
	return len(c.channels)
}

// NodeNames returns the animated node names in sorted order.
func (c *Clip) NodeNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.channels))
	for name := range c.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ticks converts accumulated playback seconds into a clip time wrapped
// into [0, Duration). The clip loops forever.
func (c *Clip) Ticks(seconds float64) float64 {
	if c == nil || c.Duration <= 0 {
		return 0
	}
	t := gomath.Mod(seconds*c.TicksPerSecond, c.Duration)
	if t < 0 {
		t += c.Duration
	}
	if t >= c.Duration {
		t = 0
	}
	return t
}

// DurationSeconds returns the loop length in seconds.
func (c *Clip) DurationSeconds() float64 {
	if c == nil {
		return 0
	}
	return c.Duration / c.TicksPerSecond
}
