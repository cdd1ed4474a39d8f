// Package pipeline runs the pixelate → dither → color-map stages over one
// buffer.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"pixel-dither/internal/effect"
	"pixel-dither/internal/raster"
)

// ErrStageFailed wraps a runtime failure recovered inside a stage.
var ErrStageFailed = errors.New("stage failed")

// Process runs the full pipeline and returns a new buffer of the same size.
// The input is never modified. On error no partial result is returned.
func Process(ctx context.Context, src *raster.Buffer, p Params) (out *raster.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrStageFailed, r)
		}
	}()

	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	// Custom colors are resolved up front so a bad palette fails before any
	// pixel work is done.
	custom, err := p.customColors()
	if err != nil {
		return nil, fmt.Errorf("color mode: %w", err)
	}

	img := src

	// 1. Pixelate
	if p.PixelSize > 1 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pixelate: %w", err)
		}
		img = effect.Pixelate(img, p.PixelSize)
	}

	// 2. Dither. Declared but unimplemented modes pass through unchanged.
	switch p.Mode {
	case ModeBayer:
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dither: %w", err)
		}
		img = effect.DitherBayer(img, p.Threshold)
	}

	// 3. Color map, always, even when dithering was skipped.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("color mode: %w", err)
	}
	return effect.ApplyColorMode(img, p.ColorMode, custom), nil
}
