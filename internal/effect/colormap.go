// Package effect implements the per-buffer image stages: pixelation,
// ordered dithering and color remapping. Every function returns a new buffer
// and leaves its input untouched.
package effect

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pixel-dither/internal/raster"
)

// ErrInvalidColorSpec is returned for a custom color that is not six hex digits.
var ErrInvalidColorSpec = errors.New("invalid color spec")

// ColorMode selects how brightness is turned back into RGB.
type ColorMode string

const (
	ColorGrayscale ColorMode = "grayscale"
	ColorRed       ColorMode = "red"
	ColorGreen     ColorMode = "green"
	ColorBlue      ColorMode = "blue"
	ColorYellow    ColorMode = "yellow"
	ColorMagenta   ColorMode = "magenta"
	ColorCyan      ColorMode = "cyan"
	ColorCustom    ColorMode = "custom"
)

// ColorModes lists every known mode in display order.
var ColorModes = []ColorMode{
	ColorGrayscale, ColorRed, ColorGreen, ColorBlue,
	ColorYellow, ColorMagenta, ColorCyan, ColorCustom,
}

// ParseColorMode converts a color mode name, rejecting unknown names.
func ParseColorMode(s string) (ColorMode, error) {
	for _, m := range ColorModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown color mode: %q", s)
}

// ColorSpec is a resolved RGB triple.
type ColorSpec struct {
	R, G, B uint8
}

// ParseColorSpec parses "RRGGBB" or "#RRGGBB".
func ParseColorSpec(s string) (ColorSpec, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return ColorSpec{}, fmt.Errorf("%w: %q is not 6 hex digits", ErrInvalidColorSpec, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ColorSpec{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorSpec, s, err)
	}
	return ColorSpec{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c ColorSpec) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// CustomColors is the three-color palette used by ColorCustom.
type CustomColors struct {
	White ColorSpec
	Grey  ColorSpec
	Black ColorSpec
}

// hueRGB gates brightness into the channels of a fixed hue. Unknown modes
// fall back to grayscale.
func hueRGB(mode ColorMode, b uint8) (uint8, uint8, uint8) {
	switch mode {
	case ColorRed:
		return b, 0, 0
	case ColorGreen:
		return 0, b, 0
	case ColorBlue:
		return 0, 0, b
	case ColorYellow:
		return b, b, 0
	case ColorMagenta:
		return b, 0, b
	case ColorCyan:
		return 0, b, b
	default:
		return b, b, b
	}
}

// customRGB maps exact white and black to their palette entries. Anything in
// between is the grey entry scaled by b/255; it never blends toward white or
// black.
func customRGB(c *CustomColors, b uint8) (uint8, uint8, uint8) {
	switch b {
	case 255:
		return c.White.R, c.White.G, c.White.B
	case 0:
		return c.Black.R, c.Black.G, c.Black.B
	}
	f := float64(b) / 255
	scale := func(v uint8) uint8 { return uint8(math.Round(float64(v) * f)) }
	return scale(c.Grey.R), scale(c.Grey.G), scale(c.Grey.B)
}

// ApplyColorMode reads the red channel of each pixel as brightness and writes
// the color chosen by mode. custom is only consulted for ColorCustom; when it
// is nil the custom mode behaves like grayscale.
func ApplyColorMode(src *raster.Buffer, mode ColorMode, custom *CustomColors) *raster.Buffer {
	out := raster.New(src.Width, src.Height)
	useCustom := mode == ColorCustom && custom != nil

	for i := 0; i < len(src.Pix); i += 4 {
		b := src.Pix[i]

		var r, g, bl uint8
		if useCustom {
			r, g, bl = customRGB(custom, b)
		} else {
			r, g, bl = hueRGB(mode, b)
		}

		out.Pix[i] = r
		out.Pix[i+1] = g
		out.Pix[i+2] = bl
		out.Pix[i+3] = raster.Opaque
	}

	return out
}
