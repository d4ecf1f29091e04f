package atlas

import (
	"errors"
	"fmt"
	"image"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// ErrTGA is returned for malformed or unsupported TGA data.
var ErrTGA = errors.New("tga: invalid data")

// tgaHeader holds the fields of the fixed 18 byte TGA header that the decoder uses.
type tgaHeader struct {
	idLength    int
	colorMap    byte
	imageType   byte
	width       int
	height      int
	bpp         int
	topToBottom bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("%w: header truncated", ErrTGA)
	}
	h := tgaHeader{
		idLength:    int(data[0]),
		colorMap:    data[1],
		imageType:   data[2],
		width:       int(data[12]) | int(data[13])<<8,
		height:      int(data[14]) | int(data[15])<<8,
		bpp:         int(data[16]),
		topToBottom: data[17]&0x20 != 0,
	}
	switch {
	case h.colorMap != 0:
		return h, fmt.Errorf("%w: color-mapped images not supported", ErrTGA)
	case h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE:
		return h, fmt.Errorf("%w: unsupported image type %d", ErrTGA, h.imageType)
	case h.bpp != 24 && h.bpp != 32:
		return h, fmt.Errorf("%w: unsupported bit depth %d", ErrTGA, h.bpp)
	case h.width == 0 || h.height == 0:
		return h, fmt.Errorf("%w: zero dimension", ErrTGA)
	}
	if err := checkDimensions(h.width, h.height); err != nil {
		return h, err
	}
	return h, nil
}

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-color TGA.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := tgaHeaderSize + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: id field truncated", ErrTGA)
	}

	pixels := data[offset:]
	stride := h.bpp / 8
	n := h.width * h.height

	// Reject short input before allocating. An RLE packet covers at most 128 pixels.
	if h.imageType == TGATypeUncompressed && len(pixels) < n*stride {
		return nil, fmt.Errorf("%w: pixel data truncated", ErrTGA)
	}
	if h.imageType == TGATypeRLE && len(pixels) < (n+127)/128*(1+stride) {
		return nil, fmt.Errorf("%w: rle stream too short for %dx%d", ErrTGA, h.width, h.height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	w := tgaWriter{img: img, h: h}

	if h.imageType == TGATypeUncompressed {
		for i := 0; i < h.width*h.height; i++ {
			w.put(pixels[i*stride : i*stride+stride])
		}
		return img, nil
	}

	for pos := 0; !w.done() && pos < len(pixels); {
		packet := pixels[pos]
		pos++
		count := int(packet&0x7f) + 1
		if packet&0x80 != 0 {
			if pos+stride > len(pixels) {
				return nil, fmt.Errorf("%w: run packet truncated", ErrTGA)
			}
			px := pixels[pos : pos+stride]
			pos += stride
			for i := 0; i < count && !w.done(); i++ {
				w.put(px)
			}
			continue
		}
		for i := 0; i < count && !w.done(); i++ {
			if pos+stride > len(pixels) {
				return nil, fmt.Errorf("%w: raw packet truncated", ErrTGA)
			}
			w.put(pixels[pos : pos+stride])
			pos += stride
		}
	}
	if !w.done() {
		return nil, fmt.Errorf("%w: rle stream ended early", ErrTGA)
	}
	return img, nil
}

// tgaWriter stores BGR(A) pixels in file order, flipping rows for bottom-up images.
type tgaWriter struct {
	img *image.NRGBA
	h   tgaHeader
	n   int
}

func (w *tgaWriter) done() bool {
	return w.n >= w.h.width*w.h.height
}

func (w *tgaWriter) put(px []byte) {
	x := w.n % w.h.width
	y := w.n / w.h.width
	if !w.h.topToBottom {
		y = w.h.height - 1 - y
	}
	i := w.img.PixOffset(x, y)
	w.img.Pix[i+0] = px[2]
	w.img.Pix[i+1] = px[1]
	w.img.Pix[i+2] = px[0]
	w.img.Pix[i+3] = 0xff
	if len(px) == 4 {
		w.img.Pix[i+3] = px[3]
	}
	w.n++
}
