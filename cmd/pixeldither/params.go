package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"pixel-dither/internal/effect"
	"pixel-dither/internal/pipeline"
)

// addParamFlags registers the pipeline parameter flags on fs.
func addParamFlags(fs *pflag.FlagSet) {
	fs.String("mode", string(pipeline.ModeBayer), "Processing mode (dither-bayer, dither-floyd, halftone)")
	fs.Float64("threshold", pipeline.DefaultThreshold, "Dithering midpoint, roughly 0-255")
	fs.Int("pixel-size", pipeline.DefaultPixelSize, "Mosaic block size; 1 disables pixelation")
	fs.String("color-mode", string(effect.ColorGrayscale), "Color mode (grayscale, red, green, blue, yellow, magenta, cyan, custom)")
	fs.String("custom-white", "", "Custom white color, RRGGBB")
	fs.String("custom-grey", "", "Custom grey color, RRGGBB")
	fs.String("custom-black", "", "Custom black color, RRGGBB")
}

// paramsFromFlags reads the flags registered by addParamFlags. Mode names are
// checked strictly here, unlike the wire format.
func paramsFromFlags(fs *pflag.FlagSet) (pipeline.Params, error) {
	modeStr, _ := fs.GetString("mode")
	threshold, _ := fs.GetFloat64("threshold")
	pixelSize, _ := fs.GetInt("pixel-size")
	colorStr, _ := fs.GetString("color-mode")
	white, _ := fs.GetString("custom-white")
	grey, _ := fs.GetString("custom-grey")
	black, _ := fs.GetString("custom-black")

	mode, err := pipeline.ParseMode(modeStr)
	if err != nil {
		return pipeline.Params{}, err
	}
	colorMode, err := effect.ParseColorMode(colorStr)
	if err != nil {
		return pipeline.Params{}, err
	}
	if colorMode == effect.ColorCustom && (white == "" || grey == "" || black == "") {
		return pipeline.Params{}, fmt.Errorf("color mode custom needs --custom-white, --custom-grey and --custom-black")
	}

	return pipeline.Params{
		Mode:        mode,
		Threshold:   threshold,
		PixelSize:   pixelSize,
		ColorMode:   colorMode,
		CustomWhite: white,
		CustomGrey:  grey,
		CustomBlack: black,
	}, nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: expected WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: must be positive", s)
	}
	return w, h, nil
}
