package effect

import "pixel-dither/internal/raster"

const bayerSize = 4

// Bayer 4x4 threshold ranks (0..15).
var bayer4x4 = [bayerSize][bayerSize]uint8{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// bayerNormalized holds (rank+0.5)/16 for every cell, all inside (0, 1).
var bayerNormalized = func() (m [bayerSize][bayerSize]float64) {
	for y, row := range bayer4x4 {
		for x, v := range row {
			m[y][x] = (float64(v) + 0.5) / (bayerSize * bayerSize)
		}
	}
	return m
}()

// BayerOffset is the amount added to the base threshold at (x, y):
// (bayer-0.5)*100, i.e. a spread of roughly ±50 that repeats every 4 pixels.
func BayerOffset(x, y int) float64 {
	return (bayerNormalized[y%bayerSize][x%bayerSize] - 0.5) * 100
}

// DitherBayer reduces src to pure black and white with 4x4 ordered dithering.
// A pixel turns white when its luminance is strictly above
// threshold+BayerOffset(x, y). threshold is not clamped.
func DitherBayer(src *raster.Buffer, threshold float64) *raster.Buffer {
	out := raster.New(src.Width, src.Height)

	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			i := src.Offset(x, y)
			lum := raster.Luminance(src.Pix[i], src.Pix[i+1], src.Pix[i+2])

			var v uint8
			if lum > threshold+BayerOffset(x, y) {
				v = 255
			}

			out.Pix[i] = v
			out.Pix[i+1] = v
			out.Pix[i+2] = v
			out.Pix[i+3] = raster.Opaque
		}
	}

	return out
}
