// Package screenshot saves rendered frames as PNG files.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ErrSize is returned when the pixel buffer does not match the frame size.
var ErrSize = errors.New("screenshot: pixel data size mismatch")

// Capture writes numbered, timestamped PNGs into a directory.
type Capture struct {
	dir    string
	prefix string
	now    func() time.Time
}

// New creates a capture writing to dir with file names starting with prefix.
func New(dir, prefix string) *Capture {
	return &Capture{dir: dir, prefix: prefix, now: time.Now}
}

// FromPixels converts bottom-up RGBA rows, as read back from OpenGL, into
// a top-down image.
func FromPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrSize, width, height, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

// Filename returns the path the next capture would be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.dir != "" {
		name = filepath.Join(c.dir, name)
	}
	return name
}

// Save writes a bottom-up RGBA frame and returns the file name.
func (c *Capture) Save(pixels []byte, width, height int) (string, error) {
	img, err := FromPixels(pixels, width, height)
	if err != nil {
		return "", err
	}
	return c.SaveImage(img)
}

// SaveImage writes img as PNG and returns the file name.
func (c *Capture) SaveImage(img image.Image) (string, error) {
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
