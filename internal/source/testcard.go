package source

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// TestCard draws a synthetic w×h card: a horizontal black-to-white ramp on
// the top half, primary color bars on the bottom half, and a mid-grey disc in
// the center. Useful for judging threshold and pixel size settings.
func TestCard(w, h int) image.Image {
	dc := gg.NewContext(w, h)

	dc.SetRGB(0, 0, 0)
	dc.Clear()

	W, H := float64(w), float64(h)

	ramp := gg.NewLinearGradient(0, 0, W, 0)
	ramp.AddColorStop(0, color.Black)
	ramp.AddColorStop(1, color.White)
	dc.SetFillStyle(ramp)
	dc.DrawRectangle(0, 0, W, H/2)
	dc.Fill()

	bars := []color.Color{
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255},
		color.RGBA{0, 0, 255, 255},
		color.RGBA{255, 255, 0, 255},
		color.RGBA{255, 0, 255, 255},
		color.RGBA{0, 255, 255, 255},
	}
	barW := W / float64(len(bars))
	for i, c := range bars {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barW, H/2, barW, H/2)
		dc.Fill()
	}

	r := min(W, H) / 6
	dc.SetRGB255(128, 128, 128)
	dc.DrawCircle(W/2, H/2, r)
	dc.Fill()

	return dc.Image()
}
