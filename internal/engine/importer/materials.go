package importer

import (
	"net/url"

	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/engine/texture"
)

// baseColor returns the base colour texture of material mi.
func (imp *importer) baseColor(mi uint32) (texture.Ref, bool) {
	doc := imp.doc
	if int(mi) >= len(doc.Materials) {
		return texture.Ref{}, false
	}
	pbr := doc.Materials[mi].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return texture.Ref{}, false
	}
	ti := pbr.BaseColorTexture.Index
	if int(ti) >= len(doc.Textures) || doc.Textures[ti].Source == nil {
		return texture.Ref{}, false
	}
	ii := *doc.Textures[ti].Source
	if int(ii) >= len(doc.Images) {
		return texture.Ref{}, false
	}
	return imp.imageRef(ii)
}

// imageRef describes image ii: a file next to the asset, a data URI, or a
// buffer view inside a GLB.
func (imp *importer) imageRef(ii uint32) (texture.Ref, bool) {
	doc := imp.doc
	img := doc.Images[ii]

	switch {
	case img.BufferView != nil:
		bi := *img.BufferView
		if int(bi) >= len(doc.BufferViews) {
			return texture.Ref{}, false
		}
		data, err := modeler.ReadBufferView(doc, doc.BufferViews[bi])
		if err != nil {
			imp.log.Warn("embedded image unreadable", zap.Uint32("image", ii), zap.Error(err))
			return texture.Ref{}, false
		}
		return texture.Ref{Embedded: true, Index: int(ii), Data: data}, true

	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			imp.log.Warn("data URI image unreadable", zap.Uint32("image", ii), zap.Error(err))
			return texture.Ref{}, false
		}
		return texture.Ref{Embedded: true, Index: int(ii), Data: data}, true

	case img.URI != "":
		path, err := url.PathUnescape(img.URI)
		if err != nil {
			path = img.URI
		}
		return texture.Ref{Path: path}, true
	}
	return texture.Ref{}, false
}
