package enhance

import (
	"image"

	"golang.org/x/image/draw"
)

// RasterImage is a decoded 8-bit RGBA pixel buffer, row-major with the
// origin at the top-left. Channel values are not premultiplied by alpha.
type RasterImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRasterImage allocates a zeroed buffer of the given size.
func NewRasterImage(width, height int) *RasterImage {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &RasterImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage copies any decoded image into a new RasterImage.
func FromImage(img image.Image) *RasterImage {
	b := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		out := NewRasterImage(b.Dx(), b.Dy())
		copy(out.Pix, nrgba.Pix)
		return out
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &RasterImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    dst.Pix,
	}
}

// Clone returns a deep copy.
func (r *RasterImage) Clone() *RasterImage {
	out := &RasterImage{
		Width:  r.Width,
		Height: r.Height,
		Pix:    make([]uint8, len(r.Pix)),
	}
	copy(out.Pix, r.Pix)
	return out
}

// NRGBA wraps the buffer as an image without copying it.
func (r *RasterImage) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Valid reports whether the buffer length matches the dimensions.
func (r *RasterImage) Valid() bool {
	return r != nil && r.Width >= 0 && r.Height >= 0 && len(r.Pix) == r.Width*r.Height*4
}

// At returns the four channel values of the pixel at (x, y).
func (r *RasterImage) At(x, y int) [4]uint8 {
	off := (y*r.Width + x) * 4
	return [4]uint8{r.Pix[off], r.Pix[off+1], r.Pix[off+2], r.Pix[off+3]}
}

// Set writes the four channel values of the pixel at (x, y).
func (r *RasterImage) Set(x, y int, px [4]uint8) {
	off := (y*r.Width + x) * 4
	copy(r.Pix[off:off+4], px[:])
}
