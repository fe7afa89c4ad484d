// Package skin binds mesh vertices to bones and builds the per-frame bone
// palette consumed by the skinning shader.
package skin

const (
	// MaxBones is the palette size shared with the vertex shader.
	MaxBones = 128
	// MaxInfluences is the number of bone slots per vertex.
	MaxInfluences = 4
)

// Vertex is the GPU vertex layout. Unused bone slots have weight 0.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Bones    [MaxInfluences]int32
	Weights  [MaxInfluences]float32
}

// AddBoneWeight records an influence. The first free slot (weight 0) is
// used; when all slots are taken the smallest weight is replaced if w is
// larger, otherwise the influence is dropped. Weights are not renormalised.
func (v *Vertex) AddBoneWeight(bone int32, w float32) {
	for i := range v.Weights {
		if v.Weights[i] == 0 {
			v.Bones[i] = bone
			v.Weights[i] = w
			return
		}
	}

	minIdx := 0
	for i := 1; i < MaxInfluences; i++ {
		if v.Weights[i] < v.Weights[minIdx] {
			minIdx = i
		}
	}
	if w > v.Weights[minIdx] {
		v.Bones[minIdx] = bone
		v.Weights[minIdx] = w
	}
}

// WeightSum returns the sum of the four weights.
func (v *Vertex) WeightSum() float32 {
	return v.Weights[0] + v.Weights[1] + v.Weights[2] + v.Weights[3]
}

// NormalizeWeights scales the weights to sum to one. A vertex with no
// influences is left alone.
func (v *Vertex) NormalizeWeights() {
	sum := v.WeightSum()
	if sum <= 0 {
		return
	}
	for i := range v.Weights {
		v.Weights[i] /= sum
	}
}

// Influences returns the number of occupied slots.
func (v *Vertex) Influences() int {
	n := 0
	for _, w := range v.Weights {
		if w != 0 {
			n++
		}
	}
	return n
}
