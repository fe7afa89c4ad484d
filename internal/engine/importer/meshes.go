package importer

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/engine/skin"
	"github.com/Faultbox/skinrig/pkg/math"
)

// influence attribute pairs read per vertex, in order
var influenceSets = [][2]string{
	{gltf.JOINTS_0, gltf.WEIGHTS_0},
	{"JOINTS_1", "WEIGHTS_1"},
}

// skinBinding is a document skin converted to a bone table plus the mapping
// from joint slot to palette id (-1 for dropped joints).
type skinBinding struct {
	binding *skin.Binding
	jointID []int32
}

func (imp *importer) accessor(idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(imp.doc.Accessors) {
		return nil, fmt.Errorf("%w: index %d", ErrAccessor, idx)
	}
	return imp.doc.Accessors[idx], nil
}

// buildMeshes converts every primitive of every imported node.
func (imp *importer) buildMeshes() ([]*model.Mesh, error) {
	doc := imp.doc
	skins := make(map[uint32]*skinBinding)
	var meshes []*model.Mesh

	for _, ni := range imp.order {
		src := doc.Nodes[ni]
		if src.Mesh == nil {
			continue
		}
		if int(*src.Mesh) >= len(doc.Meshes) {
			return nil, fmt.Errorf("importer: node %q: mesh %d out of range", imp.names[ni], *src.Mesh)
		}
		gm := doc.Meshes[*src.Mesh]

		var sb *skinBinding
		if src.Skin != nil {
			var err error
			if sb, err = imp.skin(*src.Skin, skins); err != nil {
				return nil, err
			}
		}

		for pi, prim := range gm.Primitives {
			name := gm.Name
			if name == "" {
				name = fmt.Sprintf("mesh_%d", *src.Mesh)
			}
			if len(gm.Primitives) > 1 {
				name = fmt.Sprintf("%s_%d", name, pi)
			}

			if prim.Mode != gltf.PrimitiveTriangles {
				imp.log.Debug("skipping non-triangle primitive", zap.String("mesh", name))
				continue
			}

			m, err := imp.primitive(prim, name, imp.names[ni], sb)
			if err != nil {
				return nil, fmt.Errorf("importer: mesh %q: %w", name, err)
			}
			if m == nil {
				continue
			}
			imp.nodes[ni].Meshes = append(imp.nodes[ni].Meshes, len(meshes))
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}

// primitive builds one mesh. It returns nil for a primitive without positions.
func (imp *importer) primitive(prim *gltf.Primitive, name, node string, sb *skinBinding) (*model.Mesh, error) {
	doc := imp.doc

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		imp.log.Warn("primitive has no positions", zap.String("mesh", name))
		return nil, nil
	}
	acr, err := imp.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	m := &model.Mesh{
		Name:     name,
		Node:     node,
		Vertices: make([]skin.Vertex, len(positions)),
	}
	for i, p := range positions {
		m.Vertices[i].Position = p
	}

	if prim.Indices != nil {
		acr, err := imp.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		if m.Indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		m.Indices = make([]uint32, len(positions))
		for i := range m.Indices {
			m.Indices[i] = uint32(i)
		}
	}
	if rem := len(m.Indices) % 3; rem != 0 {
		m.Indices = m.Indices[:len(m.Indices)-rem]
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acr, err := imp.accessor(idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		for i := 0; i < len(normals) && i < len(m.Vertices); i++ {
			m.Vertices[i].Normal = normals[i]
		}
	} else {
		model.GenerateNormals(m.Vertices, m.Indices)
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := imp.accessor(idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
		for i := 0; i < len(uvs) && i < len(m.Vertices); i++ {
			m.Vertices[i].TexCoord = uvs[i]
		}
	}

	if sb != nil {
		m.Skin = sb.binding
		if err := imp.influences(prim, m.Vertices, sb); err != nil {
			return nil, err
		}
	}

	if prim.Material != nil {
		if ref, ok := imp.baseColor(*prim.Material); ok {
			m.TextureRef = ref
			if imp.opts.Textures != nil {
				m.Texture = imp.opts.Textures.Get(ref)
			}
		}
	}

	m.ComputeBounds()
	return m, nil
}

// influences feeds every joint/weight pair through AddBoneWeight.
func (imp *importer) influences(prim *gltf.Primitive, verts []skin.Vertex, sb *skinBinding) error {
	doc := imp.doc
	for _, set := range influenceSets {
		jIdx, okJ := prim.Attributes[set[0]]
		wIdx, okW := prim.Attributes[set[1]]
		if !okJ || !okW {
			continue
		}
		jAcr, err := imp.accessor(jIdx)
		if err != nil {
			return err
		}
		wAcr, err := imp.accessor(wIdx)
		if err != nil {
			return err
		}
		joints, err := modeler.ReadJoints(doc, jAcr, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", set[0], err)
		}
		weights, err := modeler.ReadWeights(doc, wAcr, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", set[1], err)
		}

		n := min(len(joints), len(weights), len(verts))
		for v := 0; v < n; v++ {
			for k := 0; k < 4; k++ {
				w := weights[v][k]
				j := int(joints[v][k])
				if w <= 0 || j >= len(sb.jointID) || sb.jointID[j] < 0 {
					continue
				}
				verts[v].AddBoneWeight(sb.jointID[j], w)
			}
		}
	}
	return nil
}

// skin converts document skin si, caching the result per skin.
func (imp *importer) skin(si uint32, cache map[uint32]*skinBinding) (*skinBinding, error) {
	if sb, ok := cache[si]; ok {
		return sb, nil
	}
	doc := imp.doc
	if int(si) >= len(doc.Skins) {
		return nil, fmt.Errorf("importer: skin %d out of range", si)
	}
	gs := doc.Skins[si]

	var ibms []math.Mat4
	if gs.InverseBindMatrices != nil {
		acr, err := imp.accessor(*gs.InverseBindMatrices)
		if err != nil {
			return nil, err
		}
		data, err := modeler.ReadAccessor(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("importer: skin %d inverse bind matrices: %w", si, err)
		}
		ibms = toMatrices(data)
	}

	records := make([]skin.BoneRecord, 0, len(gs.Joints))
	for j, ni := range gs.Joints {
		rec := skin.BoneRecord{InverseBind: math.Identity()}
		if int(ni) < len(imp.names) {
			if _, inScene := imp.nodes[ni]; inScene {
				rec.Name = imp.names[ni]
			}
		}
		if j < len(ibms) {
			rec.InverseBind = ibms[j]
		}
		records = append(records, rec)
	}

	sb := &skinBinding{binding: skin.NewBinding(records), jointID: make([]int32, len(records))}
	for j, rec := range records {
		sb.jointID[j] = -1
		if id, ok := sb.binding.ID(rec.Name); ok && rec.Name != "" {
			sb.jointID[j] = int32(id)
		}
	}
	if d := sb.binding.Dropped(); d > 0 {
		imp.log.Warn("skin exceeds bone limit, extra bones ignored",
			zap.Uint32("skin", si),
			zap.Int("bones", len(records)),
			zap.Int("dropped", d),
			zap.Int("limit", skin.MaxBones))
	}

	cache[si] = sb
	return sb, nil
}

// toMatrices converts a MAT4 accessor payload to column-major matrices.
func toMatrices(data any) []math.Mat4 {
	switch v := data.(type) {
	case [][4][4]float32:
		out := make([]math.Mat4, len(v))
		for i := range v {
			out[i] = math.Mat4FromColumns(v[i])
		}
		return out
	case [][16]float32:
		out := make([]math.Mat4, len(v))
		for i := range v {
			out[i] = math.Mat4(v[i])
		}
		return out
	}
	return nil
}
