// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SkinnedVertexShader blends up to four bone matrices per vertex.
//
//go:embed skinned.vert
var SkinnedVertexShader string

// SkinnedFragmentShader is the lit, textured fragment shader.
//
//go:embed skinned.frag
var SkinnedFragmentShader string
