package main

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/engine/pose"
	"github.com/Faultbox/skinrig/internal/engine/skin"
)

var errNoSkinnedMesh = errors.New("no skinned mesh")

type assetInfo struct {
	Name   string     `yaml:"name"`
	Stats  statsInfo  `yaml:"stats"`
	Bounds boundsInfo `yaml:"bounds"`
	Clip   *clipInfo  `yaml:"clip,omitempty"`
	Nodes  []string   `yaml:"nodes"`
	Meshes []meshInfo `yaml:"meshes"`
}

type statsInfo struct {
	Nodes     int `yaml:"nodes"`
	Meshes    int `yaml:"meshes"`
	Skinned   int `yaml:"skinned"`
	Vertices  int `yaml:"vertices"`
	Triangles int `yaml:"triangles"`
	Bones     int `yaml:"bones"`
}

type boundsInfo struct {
	Min    [3]float32 `yaml:"min,flow"`
	Max    [3]float32 `yaml:"max,flow"`
	Radius float32    `yaml:"radius"`
}

type clipInfo struct {
	Name           string  `yaml:"name"`
	Duration       float64 `yaml:"duration_ticks"`
	TicksPerSecond float64 `yaml:"ticks_per_second"`
	Seconds        float64 `yaml:"seconds"`
	Channels       int     `yaml:"channels"`
}

type meshInfo struct {
	Name      string   `yaml:"name"`
	Node      string   `yaml:"node"`
	Vertices  int      `yaml:"vertices"`
	Triangles int      `yaml:"triangles"`
	Texture   string   `yaml:"texture,omitempty"`
	Bones     []string `yaml:"bones,omitempty"`
}

func infoReport(a *model.Asset) assetInfo {
	s := a.Stats()
	b := a.Bounds()
	info := assetInfo{
		Name:   a.Name,
		Stats:  statsInfo(s),
		Bounds: boundsInfo{Min: b.Min, Max: b.Max, Radius: b.Radius()},
		Nodes:  a.Graph().Names(),
	}
	if c := a.Clip(); c != nil {
		info.Clip = &clipInfo{
			Name:           c.Name,
			Duration:       c.Duration,
			TicksPerSecond: c.TicksPerSecond,
			Seconds:        c.DurationSeconds(),
			Channels:       c.Len(),
		}
	}
	for _, m := range a.Meshes() {
		mi := meshInfo{
			Name:      m.Name,
			Node:      m.Node,
			Vertices:  len(m.Vertices),
			Triangles: m.Triangles(),
			Texture:   m.TextureRef.Key(),
		}
		if m.Skinned() {
			for _, bone := range m.Skin.Bones() {
				mi.Bones = append(mi.Bones, bone.Name)
			}
		}
		info.Meshes = append(info.Meshes, mi)
	}
	return info
}

type nodePose struct {
	Node        string      `yaml:"node"`
	Source      string      `yaml:"source"`
	Translation [3]float32  `yaml:"translation,flow"`
	Matrix      [16]float32 `yaml:"matrix,flow"`
}

type poseInfo struct {
	Seconds float64    `yaml:"seconds"`
	Ticks   float64    `yaml:"ticks"`
	Nodes   []nodePose `yaml:"nodes"`
}

func poseReport(a *model.Asset, seconds float64) poseInfo {
	p := pose.NewPlayer(a.Graph(), a.Clip())
	p.SetTime(seconds)

	info := poseInfo{Seconds: seconds, Ticks: p.Ticks()}
	for _, name := range a.Graph().Names() {
		m, src := p.Resolve(name)
		info.Nodes = append(info.Nodes, nodePose{
			Node:        name,
			Source:      src.String(),
			Translation: m.Translation().Array(),
			Matrix:      m,
		})
	}
	return info
}

type boneMatrix struct {
	ID     int         `yaml:"id"`
	Bone   string      `yaml:"bone"`
	Matrix [16]float32 `yaml:"matrix,flow"`
}

type paletteInfo struct {
	Mesh    string       `yaml:"mesh"`
	Seconds float64      `yaml:"seconds"`
	Bones   []boneMatrix `yaml:"bones"`
}

// findMesh returns the named mesh, or the first skinned one when name is
// empty.
func findMesh(a *model.Asset, name string, skinned bool) (*model.Mesh, error) {
	for _, m := range a.Meshes() {
		if name != "" && m.Name != name {
			continue
		}
		if skinned && !m.Skinned() {
			if name != "" {
				return nil, fmt.Errorf("mesh %q: %w", name, errNoSkinnedMesh)
			}
			continue
		}
		return m, nil
	}
	if name != "" {
		return nil, fmt.Errorf("mesh %q not found", name)
	}
	return nil, errNoSkinnedMesh
}

func paletteReport(a *model.Asset, seconds float64, meshName string) (paletteInfo, error) {
	m, err := findMesh(a, meshName, true)
	if err != nil {
		return paletteInfo{}, err
	}

	p := pose.NewPlayer(a.Graph(), a.Clip())
	p.SetTime(seconds)

	var pal skin.Palette
	pal.Reset()
	m.Skin.PaletteInto(&pal, p.Animated(), p.Bind(), a.RootInverse())

	info := paletteInfo{Mesh: m.Name, Seconds: seconds}
	for _, b := range m.Skin.Bones() {
		info.Bones = append(info.Bones, boneMatrix{ID: b.ID, Bone: b.Name, Matrix: pal[b.ID]})
	}
	return info, nil
}

type weightInfo struct {
	Mesh       string      `yaml:"mesh"`
	Vertices   int         `yaml:"vertices"`
	Influences map[int]int `yaml:"influences"`
	MinSum     float32     `yaml:"min_sum"`
	MaxSum     float32     `yaml:"max_sum"`
	// Unweighted vertices fall back to the identity skin matrix.
	Unweighted int `yaml:"unweighted"`
}

func weightsReport(a *model.Asset, meshName string) []weightInfo {
	var out []weightInfo
	for _, m := range a.Meshes() {
		if meshName != "" && m.Name != meshName {
			continue
		}
		wi := weightInfo{Mesh: m.Name, Vertices: len(m.Vertices), Influences: make(map[int]int)}
		for i := range m.Vertices {
			v := &m.Vertices[i]
			wi.Influences[v.Influences()]++
			sum := v.WeightSum()
			if i == 0 || sum < wi.MinSum {
				wi.MinSum = sum
			}
			if i == 0 || sum > wi.MaxSum {
				wi.MaxSum = sum
			}
			if sum == 0 {
				wi.Unweighted++
			}
		}
		out = append(out, wi)
	}
	return out
}
