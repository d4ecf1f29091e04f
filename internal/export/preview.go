package export

import (
	"image"
	"math"
	"sort"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/Faultbox/skinforge/pkg/skin"
)

// sprite is one flat image placed in the front view, drawn back to front.
type sprite struct {
	depth float64
	rect  image.Rectangle
	img   image.Image
}

// RenderPreview draws m as seen from +Z with an orthographic camera at one
// pixel per atlas pixel, then enlarges it by scale with nearest-neighbor filtering.
func RenderPreview(m *skin.Model, scale int) *image.NRGBA {
	if scale < 1 {
		scale = 1
	}
	b := m.Bounds()
	w := pixels(b.Max[0] - b.Min[0])
	h := pixels(b.Max[1] - b.Min[1])
	canvas := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))

	// toCanvas maps the top-left corner of a box in model units to canvas pixels.
	toCanvas := func(left, top float64) image.Point {
		return image.Pt(pixels(left-b.Min[0]), pixels(b.Max[1]-top))
	}

	var sprites []sprite
	for _, p := range m.Parts {
		left := p.Position[0] - p.Size[0]/2
		top := p.Position[1] + p.Size[1]/2
		front := p.Position[2] + p.Size[2]/2
		origin := toCanvas(left, top)
		size := image.Pt(pixels(p.Size[0]), pixels(p.Size[1]))

		if m.Placeholder {
			sprites = append(sprites, sprite{
				depth: front,
				rect:  image.Rectangle{Min: origin, Max: origin.Add(size)},
				img:   image.NewUniform(m.Color),
			})
			continue
		}
		if mat := p.Materials[skin.FaceFront]; mat != nil {
			sprites = append(sprites, sprite{
				depth: front,
				rect:  image.Rectangle{Min: origin, Max: origin.Add(mat.Texture.Bounds().Size())},
				img:   mat.Texture,
			})
		}
		for _, v := range p.Voxels {
			c := p.WorldCenter(v)
			half := v.Size / 2
			vo := toCanvas(c[0]-half, c[1]+half)
			side := max(pixels(v.Size), 1)
			sprites = append(sprites, sprite{
				depth: c[2] + half,
				rect:  image.Rect(vo.X, vo.Y, vo.X+side, vo.Y+side),
				img:   image.NewUniform(v.Color),
			})
		}
	}

	sort.SliceStable(sprites, func(i, j int) bool { return sprites[i].depth < sprites[j].depth })
	for _, s := range sprites {
		draw.Draw(canvas, s.rect, s.img, srcOrigin(s.img), draw.Over)
	}

	if scale == 1 {
		return canvas
	}
	scaled := resize.Resize(uint(canvas.Rect.Dx()*scale), uint(canvas.Rect.Dy()*scale), canvas, resize.NearestNeighbor)
	return toNRGBA(scaled)
}

func srcOrigin(img image.Image) image.Point {
	if _, ok := img.(*image.Uniform); ok {
		return image.Point{}
	}
	return img.Bounds().Min
}

func pixels(units float64) int {
	return int(math.Round(units * skin.PixelsPerUnit))
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
