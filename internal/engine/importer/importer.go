// Package importer turns glTF 2.0 files into model assets.
//
// The first scene is imported with every mesh primitive, skin and material
// texture it references, plus the first animation as the asset's clip.
// Key times are stored in milliseconds (1000 ticks per second).
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/engine/graph"
	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/engine/texture"
	"github.com/Faultbox/skinrig/internal/logger"
)

// TicksPerSecond is the clip rate of imported animations.
const TicksPerSecond = 1000.0

var (
	ErrNoRoot   = errors.New("importer: scene has no root node")
	ErrAccessor = errors.New("importer: bad accessor")
)

// TextureSource resolves material textures to device handles.
// *texture.Cache implements it.
type TextureSource interface {
	Get(ref texture.Ref) texture.Handle
}

// Options controls an import.
type Options struct {
	// Textures is asked for every material texture. Nil skips textures,
	// leaving only Mesh.TextureRef populated.
	Textures TextureSource
}

// Load reads a .gltf or .glb file. On failure it returns an empty asset
// together with an error wrapping model.ErrLoad.
func Load(path string, opts Options) (*model.Asset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return &model.Asset{}, fmt.Errorf("%w: %s: %w", model.ErrLoad, path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromDocument(doc, name, opts)
}

// FromDocument imports an already decoded document.
func FromDocument(doc *gltf.Document, name string, opts Options) (*model.Asset, error) {
	log := logger.Named("importer").With(zap.String("asset", name))

	imp := &importer{doc: doc, opts: opts, log: log}
	asset, err := imp.run(name)
	if err != nil {
		return &model.Asset{}, fmt.Errorf("%w: %s: %w", model.ErrLoad, name, err)
	}

	s := asset.Stats()
	log.Info("asset loaded",
		zap.Int("nodes", s.Nodes),
		zap.Int("meshes", s.Meshes),
		zap.Int("skinned", s.Skinned),
		zap.Int("vertices", s.Vertices),
		zap.Int("triangles", s.Triangles),
		zap.Bool("animated", asset.Clip() != nil))
	return asset, nil
}

type importer struct {
	doc  *gltf.Document
	opts Options
	log  *zap.Logger

	// names holds the unique graph name of each document node; nodes
	// maps document indices to graph nodes of the imported scene.
	names []string
	nodes map[uint32]*graph.Node
	// order lists imported document nodes depth-first.
	order []uint32
}

func (imp *importer) run(name string) (*model.Asset, error) {
	g, err := imp.buildGraph()
	if err != nil {
		return nil, err
	}
	meshes, err := imp.buildMeshes()
	if err != nil {
		return nil, err
	}
	if len(meshes) == 0 {
		return nil, model.ErrNoMeshes
	}
	clip, err := imp.buildClip()
	if err != nil {
		return nil, err
	}
	return model.NewAsset(name, g, clip, meshes)
}
