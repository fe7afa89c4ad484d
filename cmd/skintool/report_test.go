package main

import (
	"errors"
	"testing"

	"github.com/Faultbox/skinrig/internal/engine/anim"
	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/engine/skin"
	"github.com/Faultbox/skinrig/pkg/math"
)

func tri() ([]skin.Vertex, []uint32) {
	return []skin.Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}, []uint32{0, 1, 2}
}

// rig: root -> spine (y=2), spine moves to y=4 over one second. The
// skinned "body" has two weighted vertices and one unweighted.
func rig(t *testing.T) *model.Asset {
	t.Helper()
	spine := graph.NewNode("spine")
	spine.Rest = math.Translate(0, 2, 0)
	g, err := graph.New(graph.NewNode("root", spine))
	if err != nil {
		t.Fatal(err)
	}

	clip := anim.NewClip("lift", 10, 10)
	if err := clip.SetChannels("spine", anim.Channels{
		Translation: anim.VecTrack{
			{Time: 0, Value: math.Vec3{Y: 2}},
			{Time: 10, Value: math.Vec3{Y: 4}},
		},
	}); err != nil {
		t.Fatal(err)
	}

	bodyVerts, bodyIdx := tri()
	bodyVerts[0].AddBoneWeight(0, 1)
	bodyVerts[1].AddBoneWeight(0, 0.25)
	bodyVerts[1].AddBoneWeight(0, 0.25)
	body := &model.Mesh{
		Name:     "body",
		Node:     "root",
		Vertices: bodyVerts,
		Indices:  bodyIdx,
		Skin: skin.NewBinding([]skin.BoneRecord{
			{Name: "spine", InverseBind: math.Translate(0, -2, 0)},
		}),
	}
	propVerts, propIdx := tri()
	prop := &model.Mesh{Name: "prop", Node: "spine", Vertices: propVerts, Indices: propIdx}

	a, err := model.NewAsset("rig", g, clip, []*model.Mesh{prop, body})
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}
	return a
}

func TestInfoReport(t *testing.T) {
	info := infoReport(rig(t))

	if info.Name != "rig" || info.Stats.Meshes != 2 || info.Stats.Skinned != 1 {
		t.Errorf("unexpected header %+v", info)
	}
	if info.Clip == nil || info.Clip.Seconds != 1 || info.Clip.Channels != 1 {
		t.Errorf("clip = %+v", info.Clip)
	}
	if len(info.Nodes) != 2 || info.Nodes[0] != "root" {
		t.Errorf("nodes = %v", info.Nodes)
	}
	if len(info.Meshes[1].Bones) != 1 || info.Meshes[1].Bones[0] != "spine" {
		t.Errorf("body bones = %v", info.Meshes[1].Bones)
	}
	if info.Meshes[0].Bones != nil {
		t.Errorf("rigid mesh lists bones %v", info.Meshes[0].Bones)
	}
}

func TestPoseReport(t *testing.T) {
	rep := poseReport(rig(t), 0.5)

	if rep.Ticks != 5 {
		t.Errorf("ticks = %v, want 5", rep.Ticks)
	}
	want := map[string]struct {
		source string
		y      float32
	}{
		"root":  {"animated", 0},
		"spine": {"animated", 3},
	}
	for _, n := range rep.Nodes {
		w, ok := want[n.Node]
		if !ok {
			t.Errorf("unexpected node %q", n.Node)
			continue
		}
		if n.Translation[1] != w.y {
			t.Errorf("%s y = %v, want %v", n.Node, n.Translation[1], w.y)
		}
		if n.Source != w.source {
			t.Errorf("%s source = %s, want %s", n.Node, n.Source, w.source)
		}
	}
}

func TestPaletteReport(t *testing.T) {
	a := rig(t)

	rep, err := paletteReport(a, 0.5, "")
	if err != nil {
		t.Fatalf("paletteReport: %v", err)
	}
	if rep.Mesh != "body" || len(rep.Bones) != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if got := math.Mat4(rep.Bones[0].Matrix).Translation(); !got.ApproxEqual(math.Vec3{Y: 1}, 1e-5) {
		t.Errorf("spine palette translation = %v, want (0,1,0)", got)
	}

	if _, err := paletteReport(a, 0, "prop"); !errors.Is(err, errNoSkinnedMesh) {
		t.Errorf("rigid mesh: err = %v, want errNoSkinnedMesh", err)
	}
	if _, err := paletteReport(a, 0, "missing"); err == nil {
		t.Error("missing mesh gave no error")
	}
}

func TestWeightsReport(t *testing.T) {
	reps := weightsReport(rig(t), "body")
	if len(reps) != 1 {
		t.Fatalf("got %d reports, want 1", len(reps))
	}
	w := reps[0]
	if w.Vertices != 3 || w.Unweighted != 1 {
		t.Errorf("vertices %d unweighted %d", w.Vertices, w.Unweighted)
	}
	if w.Influences[0] != 1 || w.Influences[1] != 1 || w.Influences[2] != 1 {
		t.Errorf("influences = %v", w.Influences)
	}
	if w.MinSum != 0 || w.MaxSum != 1 {
		t.Errorf("sums = [%v, %v], want [0, 1]", w.MinSum, w.MaxSum)
	}

	if all := weightsReport(rig(t), ""); len(all) != 2 {
		t.Errorf("all meshes: got %d reports", len(all))
	}
}
