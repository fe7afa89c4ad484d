// Package texture decodes model textures and caches their device handles.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var (
	// ErrEmptyData is returned for empty input.
	ErrEmptyData = errors.New("texture: no image data")
	// ErrBadSize is returned when pixel data does not cover the image.
	ErrBadSize = errors.New("texture: pixel data does not match dimensions")
	// ErrTruncated is returned for input too short to hold a TGA header
	// and footer.
	ErrTruncated = errors.New("texture: image data truncated")
)

// tgaMinSize is the TGA footer size. The decoder seeks to the footer from
// the end of the stream before reading any pixels.
const tgaMinSize = 26

type format struct {
	name   string
	match  func([]byte) bool
	decode func(io.Reader) (image.Image, error)
}

// TGA has no magic number and is the fallback, so formats are sniffed here
// instead of going through the image package registry.
var formats = []format{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode},
	{"gif", prefix("GIF8"), gif.Decode},
	{"bmp", prefix("BM"), bmp.Decode},
	{"webp", func(b []byte) bool {
		return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP"
	}, webp.Decode},
}

func prefix(magic string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(magic)) }
}

func sniff(data []byte) format {
	for _, f := range formats {
		if f.match(data) {
			return f
		}
	}
	return format{name: "tga", decode: tga.Decode}
}

// Sniff returns the detected format name, "tga" when nothing else matches.
func Sniff(data []byte) string {
	return sniff(data).name
}

// Decode reads a PNG, JPEG, GIF, BMP, WebP or TGA image into RGBA.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	f := sniff(data)
	if f.name == "tga" && len(data) < tgaMinSize {
		return nil, fmt.Errorf("%w: %d bytes of tga", ErrTruncated, len(data))
	}
	img, err := f.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", f.name, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to a zero-origin RGBA image.
func ToRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// FromBGRA builds an image from packed 8-bit BGRA texels, as stored for
// uncompressed embedded textures.
func FromBGRA(width, height int, pix []byte) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrBadSize, width, height, len(pix))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(pix); i += 4 {
		img.Pix[i+0] = pix[i+2]
		img.Pix[i+1] = pix[i+1]
		img.Pix[i+2] = pix[i+0]
		img.Pix[i+3] = pix[i+3]
	}
	return img, nil
}
