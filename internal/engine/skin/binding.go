package skin

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/internal/engine/pose"
	"github.com/Faultbox/skinrig/pkg/math"
)

// ErrUnknownBone is returned when a bone names no node of the graph.
var ErrUnknownBone = errors.New("skin: bone has no matching node")

// BoneRecord is a bone as declared by the source asset.
type BoneRecord struct {
	Name        string
	InverseBind math.Mat4
}

// Bone is a registered bone with its dense palette index.
type Bone struct {
	Name        string
	InverseBind math.Mat4
	ID          int
}

// Binding is the bone table of one mesh. It is immutable after NewBinding.
type Binding struct {
	bones   []Bone
	ids     map[string]int
	dropped int
}

// NewBinding registers records in order, assigning ids 0..n-1. Records
// without a name are skipped, a repeated name keeps its first id, and
// records beyond MaxBones are dropped (see Dropped).
func NewBinding(records []BoneRecord) *Binding {
	b := &Binding{ids: make(map[string]int, len(records))}
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		if _, ok := b.ids[r.Name]; ok {
			continue
		}
		if len(b.bones) >= MaxBones {
			b.dropped++
			continue
		}
		id := len(b.bones)
		b.ids[r.Name] = id
		b.bones = append(b.bones, Bone{Name: r.Name, InverseBind: r.InverseBind, ID: id})
	}
	return b
}

// ID returns the palette index of the named bone.
func (b *Binding) ID(name string) (int, bool) {
	id, ok := b.ids[name]
	return id, ok
}

// Bones returns the registered bones in id order.
func (b *Binding) Bones() []Bone { return b.bones }

// Len returns the number of registered bones.
func (b *Binding) Len() int { return len(b.bones) }

// Dropped returns how many records exceeded MaxBones.
func (b *Binding) Dropped() int { return b.dropped }

// Validate checks that every bone names a node of g.
func (b *Binding) Validate(g *graph.Graph) error {
	for _, bone := range b.bones {
		if _, ok := g.Find(bone.Name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownBone, bone.Name)
		}
	}
	return nil
}

// Palette holds one skinning matrix per bone id. Unused slots are identity.
type Palette [MaxBones]math.Mat4

// Reset sets every slot to identity.
func (p *Palette) Reset() {
	id := math.Identity()
	for i := range p {
		p[i] = id
	}
}

// PaletteInto fills dst for the current frame. Each bone gets
// rootInverse * world * inverseBind, with the world transform taken from
// the animated pose, then the bind pose, then identity.
func (b *Binding) PaletteInto(dst *Palette, animated, bind pose.Pose, rootInverse math.Mat4) {
	dst.Reset()
	for _, bone := range b.bones {
		world, _ := pose.Resolve(animated, bind, bone.Name)
		dst[bone.ID] = rootInverse.Mul(world).Mul(bone.InverseBind)
	}
}

// NodeTransform returns the world transform used to draw a mesh that is not
// skinned.
func NodeTransform(animated, bind pose.Pose, node string) math.Mat4 {
	m, _ := pose.Resolve(animated, bind, node)
	return m
}
