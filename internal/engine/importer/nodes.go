package importer

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/pkg/math"
)

// SyntheticRoot names the node that parents a scene with several roots.
const SyntheticRoot = "RootNode"

// nodeNames gives every document node a unique, non-empty name.
// Unnamed nodes become node_<index>; later duplicates get _<index>.
func nodeNames(doc *gltf.Document) []string {
	names := make([]string, len(doc.Nodes))
	used := make(map[string]bool, len(doc.Nodes))
	for i, n := range doc.Nodes {
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		if used[name] {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		for used[name] {
			name += "_"
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// sceneRoots returns the root node indices of the default scene, or of the
// first scene, or every parentless node when the file declares no scenes.
func sceneRoots(doc *gltf.Document) []uint32 {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			idx = int(*doc.Scene)
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// hasMatrix reports whether the node is placed by an explicit matrix. An
// identity matrix counts as absent so decoders that fill in defaults still
// fall through to TRS.
func hasMatrix(n *gltf.Node) bool {
	return n.Matrix != [16]float64{} && n.Matrix != identity64
}

// restTransform returns the node's local matrix, or T*R*S when no matrix
// is given.
func restTransform(n *gltf.Node) math.Mat4 {
	if hasMatrix(n) {
		return math.Mat4FromFloat64(n.Matrix)
	}
	t, r, s := restTRS(n)
	return math.FromTRS(t, r, s)
}

// restTRS returns the node's TRS properties with glTF defaults applied.
// For a node given by matrix only, the translation is taken from the matrix
// and rotation and scale are identity.
func restTRS(n *gltf.Node) (math.Vec3, math.Quat, math.Vec3) {
	if hasMatrix(n) {
		m := math.Mat4FromFloat64(n.Matrix)
		return m.Translation(), math.QuatIdentity(), math.Vec3{X: 1, Y: 1, Z: 1}
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}
}

func (imp *importer) buildGraph() (*graph.Graph, error) {
	doc := imp.doc
	imp.names = nodeNames(doc)
	imp.nodes = make(map[uint32]*graph.Node)

	var build func(i uint32) (*graph.Node, error)
	build = func(i uint32) (*graph.Node, error) {
		if int(i) >= len(doc.Nodes) {
			return nil, fmt.Errorf("importer: node index %d out of range", i)
		}
		if _, seen := imp.nodes[i]; seen {
			return nil, fmt.Errorf("%w: node %d", graph.ErrCycle, i)
		}
		src := doc.Nodes[i]
		n := &graph.Node{Name: imp.names[i], Rest: restTransform(src)}
		imp.nodes[i] = n
		imp.order = append(imp.order, i)

		for _, c := range src.Children {
			child, err := build(c)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
		return n, nil
	}

	roots := sceneRoots(doc)
	if len(roots) == 0 {
		return nil, ErrNoRoot
	}

	var root *graph.Node
	if len(roots) == 1 {
		r, err := build(roots[0])
		if err != nil {
			return nil, err
		}
		root = r
	} else {
		name := SyntheticRoot
		for taken(imp.names, name) {
			name += "_"
		}
		root = graph.NewNode(name)
		for _, ri := range roots {
			r, err := build(ri)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, r)
		}
	}

	return graph.New(root)
}

func taken(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
