package enhance

import "math"

// ToneRemap returns a copy of src with brightness and contrast applied to
// the color channels. Alpha is left untouched.
func ToneRemap(src *RasterImage, brightness int, contrast float64) *RasterImage {
	dst := src.Clone()
	ToneRemapInPlace(dst, brightness, contrast)
	return dst
}

// ToneRemapInPlace maps every R, G and B value v to
// clamp(0, 255, v*contrast + brightness), rounding half up.
func ToneRemapInPlace(img *RasterImage, brightness int, contrast float64) {
	if len(img.Pix) == 0 {
		return
	}
	lut := toneTable(brightness, contrast)
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = lut[pix[i]]
		pix[i+1] = lut[pix[i+1]]
		pix[i+2] = lut[pix[i+2]]
	}
}

// toneTable precomputes the remap for all 256 channel values.
func toneTable(brightness int, contrast float64) [256]uint8 {
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		lut[v] = clampRound(float64(v)*contrast + float64(brightness))
	}
	return lut
}

func clampRound(x float64) uint8 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(math.Floor(x + 0.5))
}
