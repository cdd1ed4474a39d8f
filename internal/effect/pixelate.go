package effect

import (
	"math"

	"pixel-dither/internal/raster"
)

// Pixelate replaces every size×size block with its rounded mean luminance.
// Blocks on the right and bottom edges are truncated to the image, and the
// mean is taken over the pixels actually present. Color is discarded.
// A size of 1 or less returns an unchanged copy.
func Pixelate(src *raster.Buffer, size int) *raster.Buffer {
	if size <= 1 {
		return src.Clone()
	}

	w, h := src.Width, src.Height
	out := raster.New(w, h)

	for by := 0; by < h; by += size {
		ey := min(by+size, h)
		for bx := 0; bx < w; bx += size {
			ex := min(bx+size, w)

			var sum float64
			for y := by; y < ey; y++ {
				for x := bx; x < ex; x++ {
					i := src.Offset(x, y)
					sum += raster.Luminance(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
				}
			}
			count := (ey - by) * (ex - bx)
			avg := uint8(math.Round(sum / float64(count)))

			for y := by; y < ey; y++ {
				for x := bx; x < ex; x++ {
					i := out.Offset(x, y)
					out.Pix[i] = avg
					out.Pix[i+1] = avg
					out.Pix[i+2] = avg
					out.Pix[i+3] = raster.Opaque
				}
			}
		}
	}

	return out
}
