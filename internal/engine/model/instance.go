package model

import (
	"github.com/Faultbox/skinrig/internal/engine/pose"
	"github.com/Faultbox/skinrig/internal/engine/skin"
)

// Instance is one animated copy of an asset. It owns its playback clock,
// poses and palette; the asset is shared read-only.
type Instance struct {
	asset   *Asset
	player  *pose.Player
	palette skin.Palette
}

// NewInstance creates an instance at time zero. An empty asset gives an
// instance whose Update and Draw do nothing.
func NewInstance(a *Asset) *Instance {
	inst := &Instance{asset: a}
	if !a.Empty() {
		inst.player = pose.NewPlayer(a.graph, a.clip)
	}
	inst.palette.Reset()
	return inst
}

// Asset returns the shared asset.
func (i *Instance) Asset() *Asset { return i.asset }

// Player returns the playback state, nil for an empty asset.
func (i *Instance) Player() *pose.Player { return i.player }

// Update advances playback by dt seconds.
func (i *Instance) Update(dt float64) {
	if i.player == nil {
		return
	}
	i.player.Advance(dt)
}

// SetTime jumps playback to seconds.
func (i *Instance) SetTime(seconds float64) {
	if i.player == nil {
		return
	}
	i.player.SetTime(seconds)
}

// Time returns the accumulated playback time in seconds.
func (i *Instance) Time() float64 {
	if i.player == nil {
		return 0
	}
	return i.player.Time()
}

// Draw submits every mesh to r in asset order.
func (i *Instance) Draw(r Renderer) {
	if i.player == nil {
		return
	}
	animated, bind := i.player.Animated(), i.player.Bind()
	for _, m := range i.asset.meshes {
		if m.Skinned() {
			m.Skin.PaletteInto(&i.palette, animated, bind, i.asset.rootInverse)
			r.DrawSkinned(m, &i.palette)
			continue
		}
		r.DrawRigid(m, skin.NodeTransform(animated, bind, m.Node))
	}
}
