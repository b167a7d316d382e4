package enhance

import (
	"runtime"
	"sync"
)

// sharpenKernel is applied row by row, top-left tap first. It sums to 1.
var sharpenKernel = [9]int{
	-1, -1, -1,
	-1, 9, -1,
	-1, -1, -1,
}

// Sharpen convolves the color channels of src with a 3x3 high-pass kernel
// and returns the result in a new buffer. Taps that fall outside the image
// are skipped rather than padded, so border pixels see a smaller negative
// weight than interior ones. Alpha is copied from src.
func Sharpen(src *RasterImage) *RasterImage {
	dst := NewRasterImage(src.Width, src.Height)
	sharpenRows(src, dst, 0, src.Height)
	return dst
}

// SharpenParallel produces the same output as Sharpen, splitting rows
// across workers goroutines. workers <= 0 means GOMAXPROCS.
func SharpenParallel(src *RasterImage, workers int) *RasterImage {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > src.Height {
		workers = src.Height
	}
	if workers <= 1 {
		return Sharpen(src)
	}

	dst := NewRasterImage(src.Width, src.Height)
	rowsPer := (src.Height + workers - 1) / workers

	var wg sync.WaitGroup
	for y0 := 0; y0 < src.Height; y0 += rowsPer {
		y1 := min(y0+rowsPer, src.Height)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			sharpenRows(src, dst, y0, y1)
		}(y0, y1)
	}
	wg.Wait()

	return dst
}

// sharpenRows fills rows [y0, y1) of dst.
func sharpenRows(src, dst *RasterImage, y0, y1 int) {
	w, h := src.Width, src.Height
	s, d := src.Pix, dst.Pix

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			var r, g, b int
			for ky := 0; ky < 3; ky++ {
				sy := y + ky - 1
				if sy < 0 || sy >= h {
					continue
				}
				for kx := 0; kx < 3; kx++ {
					sx := x + kx - 1
					if sx < 0 || sx >= w {
						continue
					}
					off := (sy*w + sx) * 4
					wt := sharpenKernel[ky*3+kx]
					r += int(s[off]) * wt
					g += int(s[off+1]) * wt
					b += int(s[off+2]) * wt
				}
			}

			off := (y*w + x) * 4
			d[off] = clampInt(r)
			d[off+1] = clampInt(g)
			d[off+2] = clampInt(b)
			d[off+3] = s[off+3]
		}
	}
}

func clampInt(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
