package pipeline

import (
	"fmt"

	"pixel-dither/internal/effect"
)

// Mode selects the reduction stage.
type Mode string

const (
	ModeBayer    Mode = "dither-bayer"
	ModeFloyd    Mode = "dither-floyd"
	ModeHalftone Mode = "halftone"
)

// Modes lists every declared mode. Only ModeBayer changes the image;
// the others pass the pre-dither buffer straight to the color mapper.
var Modes = []Mode{ModeBayer, ModeFloyd, ModeHalftone}

// ParseMode converts a mode name, rejecting unknown names.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown processing mode: %q", s)
}

// Default parameter values used by the CLI and HTTP surfaces.
const (
	DefaultThreshold = 128
	DefaultPixelSize = 1
)

// Params configures one pipeline run. Threshold and PixelSize have no
// enforced range.
type Params struct {
	Mode        Mode             `json:"mode"`
	Threshold   float64          `json:"threshold"`
	PixelSize   int              `json:"pixelSize"`
	ColorMode   effect.ColorMode `json:"colorMode"`
	CustomWhite string           `json:"customWhite,omitempty"`
	CustomGrey  string           `json:"customGrey,omitempty"`
	CustomBlack string           `json:"customBlack,omitempty"`
}

// DefaultParams returns bayer dithering at mid threshold in grayscale.
func DefaultParams() Params {
	return Params{
		Mode:      ModeBayer,
		Threshold: DefaultThreshold,
		PixelSize: DefaultPixelSize,
		ColorMode: effect.ColorGrayscale,
	}
}

// customColors resolves the custom palette. It returns nil unless the color
// mode is custom and all three colors are set, so the mapper never sees a
// partial palette.
func (p Params) customColors() (*effect.CustomColors, error) {
	if p.ColorMode != effect.ColorCustom ||
		p.CustomWhite == "" || p.CustomGrey == "" || p.CustomBlack == "" {
		return nil, nil
	}

	var c effect.CustomColors
	for _, f := range []struct {
		name string
		src  string
		dst  *effect.ColorSpec
	}{
		{"customWhite", p.CustomWhite, &c.White},
		{"customGrey", p.CustomGrey, &c.Grey},
		{"customBlack", p.CustomBlack, &c.Black},
	} {
		spec, err := effect.ParseColorSpec(f.src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = spec
	}
	return &c, nil
}
