// Package raster holds the in-memory pixel buffer shared by every stage.
package raster

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a pixel slice does not match its
// declared width and height.
var ErrDimensionMismatch = errors.New("buffer does not match dimensions")

// Opaque is the alpha value every stage writes.
const Opaque = 255

// Buffer is a width×height image stored as interleaved R,G,B,A bytes,
// row-major, top-to-bottom.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte // len = Width * Height * 4
}

// New allocates a zeroed buffer.
func New(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// Wrap builds a buffer around pix after checking its length.
func Wrap(width, height int, pix []byte) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Pix: pix}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks len(Pix) == Width*Height*4.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrDimensionMismatch)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrDimensionMismatch, b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrDimensionMismatch, b.Width, b.Height, want, len(b.Pix))
	}
	return nil
}

// Offset returns the index of the red byte of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]byte, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Luminance returns the perceptual brightness of an RGB triple.
func Luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
