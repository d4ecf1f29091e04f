// Package atlas provides the decoded skin texture atlas and bounds-checked access to its regions.
package atlas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
)

// Errors returned by atlas operations.
var (
	ErrDecode      = errors.New("atlas: decode failed")
	ErrEmpty       = errors.New("atlas: image has zero size")
	ErrOutOfBounds = errors.New("atlas: rectangle outside atlas bounds")
	ErrTooLarge    = errors.New("atlas: image too large")
)

// MaxDimension bounds the width and height of a decoded atlas.
const MaxDimension = 4096

func checkDimensions(w, h int) error {
	if w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, w, h, MaxDimension)
	}
	return nil
}

// Rect is an integer pixel rectangle inside an atlas.
type Rect struct {
	X, Y, W, H int
}

// Image returns the rectangle as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Area returns the number of pixels covered by the rectangle.
func (r Rect) Area() int {
	return r.W * r.H
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Atlas is an immutable decoded RGBA raster addressed by pixel rectangles.
type Atlas struct {
	img *image.NRGBA
}

// New copies img into a new atlas. The atlas origin is always (0,0).
func New(img image.Image) *Atlas {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Atlas{img: dst}
}

// Decode decodes PNG, JPEG, GIF, BMP or TGA data into an atlas.
func Decode(data []byte) (*Atlas, error) {
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// TGA has no magic number, so it is only tried after the registered formats.
		tga, tgaErr := DecodeTGA(data)
		if errors.Is(tgaErr, ErrTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrDecode, tgaErr)
		}
		if tgaErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		img = tga
	}
	if img.Bounds().Empty() {
		return nil, ErrEmpty
	}
	return New(img), nil
}

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.img.Rect.Dx() }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.img.Rect.Dy() }

// Bounds returns the full atlas rectangle.
func (a *Atlas) Bounds() Rect {
	return Rect{W: a.Width(), H: a.Height()}
}

// Contains reports whether r is non-empty and lies completely inside the atlas.
func (a *Atlas) Contains(r Rect) bool {
	if r.W <= 0 || r.H <= 0 || r.X < 0 || r.Y < 0 {
		return false
	}
	return r.X+r.W <= a.Width() && r.Y+r.H <= a.Height()
}

// At returns the un-premultiplied color of a single pixel.
func (a *Atlas) At(x, y int) color.NRGBA {
	return a.img.NRGBAAt(x, y)
}

// Region returns a copy of the sub-rectangle r with its origin moved to (0,0).
func (a *Atlas) Region(r Rect) (*image.NRGBA, error) {
	if !a.Contains(r) {
		return nil, fmt.Errorf("%w: %s in %dx%d", ErrOutOfBounds, r, a.Width(), a.Height())
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	for y := 0; y < r.H; y++ {
		src := a.img.PixOffset(r.X, r.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.W*4], a.img.Pix[src:src+r.W*4])
	}
	return dst, nil
}

// Image returns the backing raster. Callers must not modify it.
func (a *Atlas) Image() *image.NRGBA {
	return a.img
}
