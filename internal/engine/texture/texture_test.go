package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

type fakeUploader struct {
	next    Handle
	uploads int
	fail    bool
}

func (f *fakeUploader) UploadTexture(img *image.RGBA) (Handle, error) {
	if f.fail {
		return 0, errors.New("device lost")
	}
	f.uploads++
	f.next++
	return f.next, nil
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	return img
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	var bmpBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, testImage()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"png", encodePNG(t)},
		{"bmp", bmpBuf.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.name {
				t.Errorf("Sniff() = %s, want %s", got, tt.name)
			}
			img, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
				t.Fatalf("bounds = %v", img.Bounds())
			}
			if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
				t.Errorf("pixel (1,1) = %v", got)
			}
		})
	}
}

func TestDecodeTGA(t *testing.T) {
	// 1x1 uncompressed 24-bit true-colour, stored as B, G, R
	data := make([]byte, 18, 21)
	data[2] = 2
	data[12] = 1
	data[14] = 1
	data[16] = 24
	data[17] = 0x20
	data = append(data, 30, 20, 10)
	data = append(data, tgaFooter()...)

	if got := Sniff(data); got != "tga" {
		t.Errorf("Sniff() = %s, want tga", got)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c := img.RGBAAt(0, 0)
	if c.R != 10 || c.G != 20 || c.B != 30 {
		t.Errorf("pixel = %v, want (10,20,30)", c)
	}
}

// tgaFooter is a TGA 2.0 footer with no extension area.
func tgaFooter() []byte {
	footer := make([]byte, 8, 26)
	return append(footer, "TRUEVISION-XFILE.\x00"...)
}

func TestDecodeTruncatedTGA(t *testing.T) {
	data := make([]byte, 21)
	data[2] = 2
	if _, err := Decode(data); !errors.Is(err, ErrTruncated) {
		t.Errorf("Decode(21 bytes) = %v, want ErrTruncated", err)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("Decode(nil) = %v, want ErrEmptyData", err)
	}
}

func TestFromBGRA(t *testing.T) {
	img, err := FromBGRA(2, 1, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{3, 2, 1, 4, 7, 6, 5, 8}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %v, want %v", img.Pix, want)
	}

	if _, err := FromBGRA(2, 2, []byte{1, 2, 3, 4}); !errors.Is(err, ErrBadSize) {
		t.Errorf("short data: %v, want ErrBadSize", err)
	}
}

func TestToRGBARebasesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(6, 5, color.RGBA{R: 9, A: 255})

	dst := ToRGBA(src)
	if dst.Bounds().Min != (image.Point{}) {
		t.Errorf("Min = %v, want origin", dst.Bounds().Min)
	}
	if dst.RGBAAt(1, 0).R != 9 {
		t.Errorf("pixel not moved: %v", dst.RGBAAt(1, 0))
	}
}

func TestRefKey(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Ref{Path: "textures/skin.png"}, "textures/skin.png"},
		{Ref{Embedded: true, Index: 3}, "*3"},
		{Ref{Embedded: true, Index: 0, Path: "ignored"}, "*0"},
	}
	for _, tt := range tests {
		if got := tt.ref.Key(); got != tt.want {
			t.Errorf("Key() = %q, want %q", got, tt.want)
		}
	}
}

func TestCacheReturnsSameHandle(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "skin.png"), encodePNG(t), 0o644); err != nil {
		t.Fatal(err)
	}

	up := &fakeUploader{}
	c := NewCache(dir, up)

	h1 := c.Get(Ref{Path: "skin.png"})
	h2 := c.Get(Ref{Path: "skin.png"})
	if h1 == 0 || h1 != h2 {
		t.Errorf("handles %d, %d, want equal and non-zero", h1, h2)
	}
	if up.uploads != 1 {
		t.Errorf("uploads = %d, want 1", up.uploads)
	}

	emb := c.Get(Ref{Embedded: true, Index: 0, Data: encodePNG(t)})
	raw := c.Get(Ref{Embedded: true, Index: 1, Width: 1, Height: 1, Data: []byte{0, 0, 255, 255}})
	if emb == 0 || raw == 0 || emb == h1 || raw == emb {
		t.Errorf("embedded handles %d, %d should be distinct and non-zero", emb, raw)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestCacheDoesNotRememberFailures(t *testing.T) {
	dir := t.TempDir()
	up := &fakeUploader{}
	c := NewCache(dir, up)

	if h := c.Get(Ref{Path: "late.png"}); h != 0 {
		t.Fatalf("missing file gave handle %d", h)
	}
	if c.Len() != 0 {
		t.Errorf("failure was cached")
	}

	if err := os.WriteFile(filepath.Join(dir, "late.png"), encodePNG(t), 0o644); err != nil {
		t.Fatal(err)
	}
	if h := c.Get(Ref{Path: "late.png"}); h == 0 {
		t.Error("retry after file appeared failed")
	}

	up.fail = true
	if h := c.Get(Ref{Embedded: true, Index: 7, Data: encodePNG(t)}); h != 0 {
		t.Errorf("upload failure gave handle %d", h)
	}
	if c.Get(Ref{}) != 0 {
		t.Error("empty ref should give 0")
	}
}
