// Package source converts between encoded images, image.Image values and
// raster buffers. It is the only place that touches file formats.
package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pixel-dither/internal/raster"
)

// Decode reads any registered image format into a buffer and reports the
// format name.
func Decode(r io.Reader) (*raster.Buffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img), format, nil
}

// FromImage copies img into a new non-premultiplied RGBA buffer anchored at (0,0).
func FromImage(img image.Image) *raster.Buffer {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &raster.Buffer{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// ToImage wraps buf as an image without copying.
func ToImage(buf *raster.Buffer) *image.NRGBA {
	return &image.NRGBA{
		Pix:    buf.Pix,
		Stride: buf.Width * 4,
		Rect:   image.Rect(0, 0, buf.Width, buf.Height),
	}
}

// Cover scales img to exactly w×h without distortion, cropping the longer
// side around the center.
func Cover(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, coverCrop(img.Bounds(), w, h), draw.Over, nil)
	return dst
}

// coverCrop returns the largest centered region of src with aspect w:h.
func coverCrop(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()

	// compare sw/sh with w/h without floats
	cw, ch := sw, sh
	if sw*h > sh*w {
		cw = sh * w / h
	} else {
		ch = sw * h / w
	}

	off := image.Pt((sw-cw)/2, (sh-ch)/2)
	origin := src.Min.Add(off)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(cw, ch))}
}

// IsHTML reports whether path names an HTML page to be rendered.
func IsHTML(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}

// Output formats understood by Encode.
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// FormatFromPath picks an output format from a file extension.
func FormatFromPath(path string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return FormatPNG, nil
	case strings.HasSuffix(lower, ".bmp"):
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", path)
	}
}

// Encode writes buf as png or bmp.
func Encode(w io.Writer, buf *raster.Buffer, format string) error {
	img := ToImage(buf)
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}
