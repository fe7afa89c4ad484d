package pose

import (
	"testing"

	"github.com/Faultbox/skinrig/internal/engine/anim"
	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/pkg/math"
)

// armRig is root -> shoulder -> elbow with translated rest transforms.
func armRig(t *testing.T) *graph.Graph {
	t.Helper()
	elbow := graph.NewNode("elbow")
	elbow.Rest = math.Translate(0, 3, 0)
	shoulder := graph.NewNode("shoulder", elbow)
	shoulder.Rest = math.Translate(1, 0, 0)
	root := graph.NewNode("root", shoulder)
	root.Rest = math.Scale(2, 2, 2)

	g, err := graph.New(root)
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	return g
}

// swingClip rotates the shoulder 90 degrees about Z over 100 ticks.
func swingClip(t *testing.T) *anim.Clip {
	t.Helper()
	c := anim.NewClip("swing", 100, 25)
	err := c.SetChannels("shoulder", anim.Channels{
		Translation: anim.VecTrack{{Time: 0, Value: math.Vec3{X: 1}}},
		Rotation: anim.QuatTrack{
			{Time: 0, Value: math.QuatIdentity()},
			{Time: 100, Value: math.QuatFromAxisAngle(math.Vec3{Z: 1}, 1.5707964)},
		},
	})
	if err != nil {
		t.Fatalf("SetChannels: %v", err)
	}
	return c
}

func TestBindPoseComposesRest(t *testing.T) {
	g := armRig(t)
	bind := Evaluate(g, nil, 0)

	if len(bind) != g.Len() {
		t.Fatalf("bind pose has %d entries, want %d", len(bind), g.Len())
	}

	root, _ := g.Find("root")
	shoulder, _ := g.Find("shoulder")
	elbow, _ := g.Find("elbow")
	want := root.Rest.Mul(shoulder.Rest).Mul(elbow.Rest)
	if !bind["elbow"].ApproxEqual(want, 1e-6) {
		t.Errorf("bind[elbow] = %v, want %v", bind["elbow"], want)
	}
	if got := bind["elbow"].Translation(); !got.ApproxEqual(math.Vec3{X: 2, Y: 6}, 1e-5) {
		t.Errorf("elbow world position = %v, want (2, 6, 0)", got)
	}
}

func TestBindPoseIgnoresTime(t *testing.T) {
	g := armRig(t)
	a := Evaluate(g, nil, 0)
	b := Evaluate(g, nil, 73.5)
	for name, m := range a {
		if b[name] != m {
			t.Errorf("bind[%s] changed with time", name)
		}
	}
}

func TestEvaluateAnimated(t *testing.T) {
	g := armRig(t)
	clip := swingClip(t)

	p := Evaluate(g, clip, 100)
	// shoulder rotated so its +Y child now points along -X
	got := p["elbow"].Translation()
	want := math.Vec3{X: -4, Y: 0}
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("elbow at end of swing = %v, want %v", got, want)
	}

	// root has no channels and keeps its rest transform
	if !p["root"].ApproxEqual(math.Scale(2, 2, 2), 0) {
		t.Errorf("root = %v, want rest", p["root"])
	}
}

func TestChildFollowsAnimatedParent(t *testing.T) {
	child := graph.NewNode("child")
	parent := graph.NewNode("parent", child)
	g, err := graph.New(graph.NewNode("root", parent))
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}

	clip := anim.NewClip("slide", 10, 25)
	err = clip.SetChannels("parent", anim.Channels{
		Translation: anim.VecTrack{{Time: 0, Value: math.Vec3{X: 5}}},
	})
	if err != nil {
		t.Fatalf("SetChannels: %v", err)
	}

	p := Evaluate(g, clip, 0)
	want := math.Vec3{X: 5}
	if got := p["parent"].Translation(); !got.ApproxEqual(want, 1e-6) {
		t.Errorf("parent = %v, want %v", got, want)
	}
	if got := p["child"].Translation(); !got.ApproxEqual(want, 1e-6) {
		t.Errorf("child = %v, want %v", got, want)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	g := armRig(t)
	clip := swingClip(t)

	a := Evaluate(g, clip, 37.25)
	b := Evaluate(g, clip, 37.25)
	for name, m := range a {
		if b[name] != m {
			t.Errorf("pose[%s] differs between identical evaluations", name)
		}
	}
}

func TestEvaluateIntoClearsStaleEntries(t *testing.T) {
	g := armRig(t)
	dst := Pose{"ghost": math.Translate(9, 9, 9)}

	EvaluateInto(dst, g, nil, 0)
	if _, ok := dst["ghost"]; ok {
		t.Error("stale entry survived EvaluateInto")
	}
	if len(dst) != g.Len() {
		t.Errorf("len(dst) = %d, want %d", len(dst), g.Len())
	}
}

func TestResolve(t *testing.T) {
	animated := Pose{"a": math.Translate(1, 0, 0)}
	bind := Pose{"a": math.Translate(2, 0, 0), "b": math.Translate(3, 0, 0)}

	tests := []struct {
		name    string
		wantX   float32
		wantSrc Source
	}{
		{"a", 1, Animated},
		{"b", 3, Bind},
		{"c", 0, NotFound},
	}
	for _, tt := range tests {
		m, src := Resolve(animated, bind, tt.name)
		if src != tt.wantSrc {
			t.Errorf("Resolve(%s) source = %v, want %v", tt.name, src, tt.wantSrc)
		}
		if m.Translation().X != tt.wantX {
			t.Errorf("Resolve(%s) x = %v, want %v", tt.name, m.Translation().X, tt.wantX)
		}
	}

	if m, _ := Resolve(nil, nil, "x"); m != math.Identity() {
		t.Errorf("Resolve on empty poses = %v, want identity", m)
	}
}
