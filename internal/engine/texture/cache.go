package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/logger"
)

// Handle identifies a device texture. Zero means no texture.
type Handle uint32

// Uploader creates device textures. The GL renderer implements it.
type Uploader interface {
	UploadTexture(img *image.RGBA) (Handle, error)
}

// Ref points at the image a material uses: a file path relative to the
// asset, or an image embedded in the asset itself.
type Ref struct {
	Path     string
	Embedded bool
	Index    int
	// Data holds embedded bytes. With Width and Height set they are raw
	// BGRA texels, otherwise an encoded image file.
	Data          []byte
	Width, Height int
}

// Key is the cache key: the path, or "*<index>" for embedded images.
func (r Ref) Key() string {
	if r.Embedded {
		return "*" + strconv.Itoa(r.Index)
	}
	return r.Path
}

// Cache maps texture references to uploaded handles. Failed loads are not
// remembered, so a later request retries. Not safe for concurrent use;
// it runs on the thread that owns the graphics context.
type Cache struct {
	dir     string
	up      Uploader
	handles map[string]Handle
	log     *zap.Logger
}

// NewCache creates a cache resolving relative paths against dir.
func NewCache(dir string, up Uploader) *Cache {
	return &Cache{
		dir:     dir,
		up:      up,
		handles: make(map[string]Handle),
		log:     logger.Named("texture"),
	}
}

// Get returns the handle for ref, loading and uploading it on first use.
// It returns 0 when the image cannot be loaded.
func (c *Cache) Get(ref Ref) Handle {
	key := ref.Key()
	if key == "" {
		return 0
	}
	if h, ok := c.handles[key]; ok {
		return h
	}

	img, err := c.load(ref)
	if err != nil {
		c.log.Warn("texture load failed", zap.String("key", key), zap.Error(err))
		return 0
	}
	h, err := c.up.UploadTexture(img)
	if err != nil || h == 0 {
		c.log.Warn("texture upload failed", zap.String("key", key), zap.Error(err))
		return 0
	}

	c.handles[key] = h
	c.log.Debug("texture cached",
		zap.String("key", key),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return h
}

func (c *Cache) load(ref Ref) (*image.RGBA, error) {
	if ref.Embedded {
		if ref.Width > 0 && ref.Height > 0 {
			return FromBGRA(ref.Width, ref.Height, ref.Data)
		}
		return Decode(ref.Data)
	}

	path := ref.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, filepath.FromSlash(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", ref.Path, err)
	}
	return Decode(data)
}

// Len returns the number of cached textures.
func (c *Cache) Len() int { return len(c.handles) }

// Handles returns every cached handle, for releasing device memory.
func (c *Cache) Handles() []Handle {
	hs := make([]Handle, 0, len(c.handles))
	for _, h := range c.handles {
		hs = append(hs, h)
	}
	return hs
}
