package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"pixel-dither/internal/raster"
)

// RawFormat is the sidecar format tag for interleaved RGBA bytes.
const RawFormat = "RGBA8"

// RawMeta is the JSON sidecar written next to a raw dump.
type RawMeta struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// SidecarPath returns the .json path that describes a raw dump.
func SidecarPath(path string) string {
	p := strings.TrimSuffix(path, ".zst")
	p = strings.TrimSuffix(p, ".rgba")
	p = strings.TrimSuffix(p, ".raw")
	return p + ".json"
}

// IsRaw reports whether path names a raw RGBA dump.
func IsRaw(path string) bool {
	p := strings.TrimSuffix(strings.ToLower(path), ".zst")
	return strings.HasSuffix(p, ".rgba") || strings.HasSuffix(p, ".raw")
}

func isZstd(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

func newDecoder() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

func newEncoder() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
}

// ReadRaw loads a raw RGBA dump of the given size. Paths ending in .zst are
// decompressed first.
func ReadRaw(path string, width, height int) (*raster.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw: %w", err)
	}

	if isZstd(path) {
		dec, err := newDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()

		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
	}

	return raster.Wrap(width, height, data)
}

// ReadRawWithSidecar loads a raw dump using the size stored in its sidecar.
func ReadRawWithSidecar(path string) (*raster.Buffer, error) {
	metaJSON, err := os.ReadFile(SidecarPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading sidecar: %w", err)
	}
	var meta RawMeta
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, fmt.Errorf("parsing sidecar: %w", err)
	}
	if meta.Format != RawFormat {
		return nil, fmt.Errorf("unsupported raw format %q", meta.Format)
	}
	return ReadRaw(path, meta.Width, meta.Height)
}

// WriteRaw stores buf as raw RGBA (zstd-compressed for .zst paths) and writes
// the JSON sidecar. It returns the sidecar path.
func WriteRaw(path string, buf *raster.Buffer) (string, error) {
	data := buf.Pix
	if isZstd(path) {
		enc, err := newEncoder()
		if err != nil {
			return "", fmt.Errorf("zstd writer: %w", err)
		}
		data = enc.EncodeAll(buf.Pix, nil)
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("zstd close: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing raw: %w", err)
	}

	meta := RawMeta{
		Width:  buf.Width,
		Height: buf.Height,
		Format: RawFormat,
	}
	metaJSON, _ := json.MarshalIndent(meta, "", "  ")
	metaPath := SidecarPath(path)
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return "", fmt.Errorf("writing sidecar: %w", err)
	}
	return metaPath, nil
}
