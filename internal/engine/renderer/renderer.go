// Package renderer draws skinned and rigid model meshes with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/engine/renderer/shaders"
	"github.com/Faultbox/skinrig/internal/engine/shader"
	"github.com/Faultbox/skinrig/internal/engine/skin"
	"github.com/Faultbox/skinrig/internal/engine/texture"
	"github.com/Faultbox/skinrig/internal/logger"
	"github.com/Faultbox/skinrig/pkg/math"
)

// vertexSize is the byte size of skin.Vertex: position, normal, uv,
// four bone ids and four weights.
const vertexSize = int32(unsafe.Sizeof(skin.Vertex{}))

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
	LightDir   math.Vec3
	Wireframe  bool
}

// gpuMesh holds the buffers of one uploaded mesh.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Renderer handles all OpenGL rendering. It implements model.Renderer and
// texture.Uploader.
type Renderer struct {
	config  Config
	program *shader.Program
	meshes  map[*model.Mesh]*gpuMesh
	white   uint32
	log     *zap.Logger
}

var (
	_ model.Renderer   = (*Renderer)(nil)
	_ texture.Uploader = (*Renderer)(nil)
)

// New creates a new renderer.
// Must be called after the OpenGL context is current.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		meshes: make(map[*model.Mesh]*gpuMesh),
		log:    logger.Named("renderer"),
	}
	if r.config.LightDir == (math.Vec3{}) {
		r.config.LightDir = math.Vec3{X: -0.4, Y: -1, Z: -0.6}
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)

	var err error
	r.program, err = shader.NewProgram(shaders.SkinnedVertexShader, shaders.SkinnedFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.program.MustUniform("uBones")

	r.white = r.createWhiteTexture()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases every GPU resource the renderer owns.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("meshes", len(r.meshes)))
	for m := range r.meshes {
		r.release(m)
	}
	if r.white != 0 {
		gl.DeleteTextures(1, &r.white)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// ReadPixels reads back the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// UploadTexture uploads an RGBA image with mipmaps and returns its GL name.
func (r *Renderer) UploadTexture(img *image.RGBA) (texture.Handle, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || len(img.Pix) == 0 {
		return 0, fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return texture.Handle(texID), nil
}

func (r *Renderer) createWhiteTexture() uint32 {
	white := []uint8{255, 255, 255, 255}
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return texID
}

// Prepare uploads the vertex and index buffers of every mesh in asset.
// Meshes already uploaded are skipped.
func (r *Renderer) Prepare(asset *model.Asset) {
	if asset.Empty() {
		return
	}
	for _, m := range asset.Meshes() {
		if _, ok := r.meshes[m]; ok || len(m.Vertices) == 0 || len(m.Indices) == 0 {
			continue
		}
		r.meshes[m] = upload(m)
	}
	r.log.Debug("asset uploaded", zap.String("asset", asset.Name), zap.Int("meshes", len(r.meshes)))
}

func upload(m *model.Mesh) *gpuMesh {
	g := &gpuMesh{indexCount: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(vertexSize), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	var v skin.Vertex
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexSize, unsafe.Offsetof(v.Position))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexSize, unsafe.Offsetof(v.Normal))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexSize, unsafe.Offsetof(v.TexCoord))
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribIPointerWithOffset(3, 4, gl.INT, vertexSize, unsafe.Offsetof(v.Bones))
	gl.EnableVertexAttribArray(4)
	gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, vertexSize, unsafe.Offsetof(v.Weights))

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return g
}

func (r *Renderer) release(m *model.Mesh) {
	g, ok := r.meshes[m]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	delete(r.meshes, m)
}

// Begin clears the frame and sets the per-frame uniforms. modelMat places
// the whole asset in the world.
func (r *Renderer) Begin(projection, view, modelMat math.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.program.Use()
	r.program.SetMat4("uProjection", projection)
	r.program.SetMat4("uView", view)
	r.program.SetMat4("uModel", modelMat)
	r.program.SetVec3("uLightDir", r.config.LightDir)
	r.program.SetInt("uTexture", 0)
}

// SetWireframe toggles line rendering.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// DrawRigid draws a mesh without skinning, placed by its node transform.
func (r *Renderer) DrawRigid(m *model.Mesh, node math.Mat4) {
	g := r.bind(m)
	if g == nil {
		return
	}
	r.program.SetInt("uSkinned", 0)
	r.program.SetMat4("uNode", node)
	r.draw(g)
}

// DrawSkinned draws a mesh with the bone palette. The palette already
// includes the node placement so uNode is identity.
func (r *Renderer) DrawSkinned(m *model.Mesh, palette *skin.Palette) {
	g := r.bind(m)
	if g == nil {
		return
	}
	r.program.SetInt("uSkinned", 1)
	r.program.SetMat4("uNode", math.Identity())
	r.program.SetMat4Array("uBones", palette[:])
	r.draw(g)
}

func (r *Renderer) bind(m *model.Mesh) *gpuMesh {
	g, ok := r.meshes[m]
	if !ok {
		return nil
	}
	tex := uint32(m.Texture)
	if tex == 0 {
		tex = r.white
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	return g
}

func (r *Renderer) draw(g *gpuMesh) {
	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}
