package enhance

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports source bytes that could not be turned into pixels.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to decode image: %v", e.Err)
	}
	return fmt.Sprintf("failed to decode image %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure to produce the compressed output raster.
type EncodeError struct {
	Name string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to encode image: %v", e.Err)
	}
	return fmt.Sprintf("failed to encode image %s: %v", e.Name, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Decode decodes any registered format and returns the image and format name.
func Decode(name string, data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &DecodeError{Name: name, Err: fmt.Errorf("empty input")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Name: name, Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", &DecodeError{Name: name, Err: fmt.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())}
	}
	return img, format, nil
}

// EncodeJPEG compresses img at the given quality (1-100).
func EncodeJPEG(name string, img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, &EncodeError{Name: name, Err: err}
	}
	return buf.Bytes(), nil
}

// LimitWidth scales img down to maxWidth keeping its aspect ratio. Images
// already narrow enough, or maxWidth <= 0, are returned unchanged.
func LimitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	height := scaledHeight(b, maxWidth)
	dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Thumbnail scales img to width pixels wide with a proportional height.
func Thumbnail(img image.Image, width int) image.Image {
	b := img.Bounds()
	height := scaledHeight(b, width)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func scaledHeight(b image.Rectangle, width int) int {
	h := int(float64(b.Dy()) / float64(b.Dx()) * float64(width))
	if h < 1 {
		h = 1
	}
	return h
}
