package skin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/internal/engine/pose"
	"github.com/Faultbox/skinrig/pkg/math"
)

func TestAddBoneWeightKeepsTopFour(t *testing.T) {
	var v Vertex
	weights := []float32{0.1, 0.5, 0.05, 0.9, 0.3}
	for i, w := range weights {
		v.AddBoneWeight(int32(i), w)
	}

	want := map[int32]float32{0: 0.1, 1: 0.5, 3: 0.9, 4: 0.3}
	got := make(map[int32]float32)
	for i := range v.Weights {
		got[v.Bones[i]] = v.Weights[i]
	}
	if len(got) != len(want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
	for bone, w := range want {
		if got[bone] != w {
			t.Errorf("bone %d weight = %v, want %v", bone, got[bone], w)
		}
	}
}

func TestAddBoneWeight(t *testing.T) {
	tests := []struct {
		name        string
		weights     []float32
		wantBones   [4]int32
		wantWeights [4]float32
	}{
		{
			name:        "fills in order",
			weights:     []float32{0.4, 0.6},
			wantBones:   [4]int32{0, 1, 0, 0},
			wantWeights: [4]float32{0.4, 0.6, 0, 0},
		},
		{
			name:        "smaller weight discarded",
			weights:     []float32{0.3, 0.3, 0.3, 0.3, 0.2},
			wantBones:   [4]int32{0, 1, 2, 3},
			wantWeights: [4]float32{0.3, 0.3, 0.3, 0.3},
		},
		{
			name:        "equal weight discarded",
			weights:     []float32{0.2, 0.4, 0.6, 0.8, 0.2},
			wantBones:   [4]int32{0, 1, 2, 3},
			wantWeights: [4]float32{0.2, 0.4, 0.6, 0.8},
		},
		{
			name:        "tie replaces first smallest",
			weights:     []float32{0.5, 0.1, 0.7, 0.1, 0.3},
			wantBones:   [4]int32{0, 4, 2, 3},
			wantWeights: [4]float32{0.5, 0.3, 0.7, 0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Vertex
			for i, w := range tt.weights {
				v.AddBoneWeight(int32(i), w)
			}
			if v.Bones != tt.wantBones || v.Weights != tt.wantWeights {
				t.Errorf("got bones %v weights %v, want %v %v", v.Bones, v.Weights, tt.wantBones, tt.wantWeights)
			}
		})
	}
}

func TestNormalizeWeights(t *testing.T) {
	v := Vertex{Weights: [4]float32{1, 1, 2, 0}}
	v.NormalizeWeights()
	if v.Weights != [4]float32{0.25, 0.25, 0.5, 0} {
		t.Errorf("NormalizeWeights() = %v", v.Weights)
	}
	if v.Influences() != 3 {
		t.Errorf("Influences() = %d, want 3", v.Influences())
	}

	var empty Vertex
	empty.NormalizeWeights()
	if empty.Weights != [4]float32{} {
		t.Errorf("empty vertex changed: %v", empty.Weights)
	}
}

func TestNewBinding(t *testing.T) {
	b := NewBinding([]BoneRecord{
		{Name: "hip", InverseBind: math.Identity()},
		{Name: ""},
		{Name: "knee", InverseBind: math.Translate(0, -1, 0)},
		{Name: "hip", InverseBind: math.Translate(5, 5, 5)},
	})

	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	for i, bone := range b.Bones() {
		if bone.ID != i {
			t.Errorf("bone %s id = %d, want %d", bone.Name, bone.ID, i)
		}
	}
	if id, ok := b.ID("knee"); !ok || id != 1 {
		t.Errorf("ID(knee) = %d, %v", id, ok)
	}
	if _, ok := b.ID("ankle"); ok {
		t.Error("ID(ankle) should fail")
	}
	if b.Bones()[0].InverseBind != math.Identity() {
		t.Error("repeated name replaced the first inverse bind")
	}
}

func TestNewBindingCapacity(t *testing.T) {
	records := make([]BoneRecord, 130)
	for i := range records {
		records[i] = BoneRecord{Name: fmt.Sprintf("b%d", i), InverseBind: math.Identity()}
	}

	b := NewBinding(records)
	if b.Len() != MaxBones {
		t.Errorf("Len() = %d, want %d", b.Len(), MaxBones)
	}
	if b.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", b.Dropped())
	}
	if _, ok := b.ID("b128"); ok {
		t.Error("b128 should have been dropped")
	}
	if id, ok := b.ID("b127"); !ok || id != 127 {
		t.Errorf("ID(b127) = %d, %v", id, ok)
	}

	// Building the palette must stay inside the fixed array
	var p Palette
	b.PaletteInto(&p, nil, nil, math.Identity())
}

func TestBindingValidate(t *testing.T) {
	g, err := graph.New(graph.NewNode("root", graph.NewNode("arm")))
	if err != nil {
		t.Fatal(err)
	}

	if err := NewBinding([]BoneRecord{{Name: "arm"}}).Validate(g); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	err = NewBinding([]BoneRecord{{Name: "arm"}, {Name: "wing"}}).Validate(g)
	if !errors.Is(err, ErrUnknownBone) {
		t.Errorf("Validate() = %v, want ErrUnknownBone", err)
	}
}

func TestPaletteInto(t *testing.T) {
	b := NewBinding([]BoneRecord{
		{Name: "a", InverseBind: math.Translate(0, -1, 0)},
		{Name: "b", InverseBind: math.Translate(0, -2, 0)},
		{Name: "c", InverseBind: math.Translate(0, -3, 0)},
	})
	animated := pose.Pose{"a": math.Translate(1, 1, 0)}
	bind := pose.Pose{"a": math.Translate(7, 7, 7), "b": math.Translate(0, 2, 0)}
	rootInv := math.Translate(-1, 0, 0)

	var p Palette
	p[100] = math.Scale(3, 3, 3)
	b.PaletteInto(&p, animated, bind, rootInv)

	tests := []struct {
		id   int
		want math.Vec3
	}{
		{0, math.Vec3{X: 0, Y: 0}},  // animated
		{1, math.Vec3{X: -1, Y: 0}}, // bind fallback
		{2, math.Vec3{X: -1, Y: -3}},
	}
	for _, tt := range tests {
		if got := p[tt.id].Translation(); !got.ApproxEqual(tt.want, 1e-6) {
			t.Errorf("palette[%d] translation = %v, want %v", tt.id, got, tt.want)
		}
	}
	for i := b.Len(); i < MaxBones; i++ {
		if p[i] != math.Identity() {
			t.Errorf("unused slot %d = %v, want identity", i, p[i])
		}
	}
}

func TestPaletteBindPoseIsIdentity(t *testing.T) {
	// With matching inverse binds the bind pose palette is identity.
	hip := math.Translate(0, 1, 0)
	knee := hip.Mul(math.RotateY(0.7)).Mul(math.Translate(0, 0.5, 0))
	b := NewBinding([]BoneRecord{
		{Name: "hip", InverseBind: hip.Inverse()},
		{Name: "knee", InverseBind: knee.Inverse()},
	})
	bind := pose.Pose{"hip": hip, "knee": knee}

	var p Palette
	b.PaletteInto(&p, nil, bind, math.Identity())
	for i := 0; i < b.Len(); i++ {
		if !p[i].ApproxEqual(math.Identity(), 1e-5) {
			t.Errorf("palette[%d] = %v, want identity", i, p[i])
		}
	}
}

func TestNodeTransform(t *testing.T) {
	animated := pose.Pose{"prop": math.Translate(1, 0, 0)}
	bind := pose.Pose{"prop": math.Translate(2, 0, 0), "hat": math.Translate(3, 0, 0)}

	if got := NodeTransform(animated, bind, "prop").Translation().X; got != 1 {
		t.Errorf("prop x = %v, want 1", got)
	}
	if got := NodeTransform(animated, bind, "hat").Translation().X; got != 3 {
		t.Errorf("hat x = %v, want 3", got)
	}
	if got := NodeTransform(animated, bind, "none"); got != math.Identity() {
		t.Errorf("none = %v, want identity", got)
	}
}
