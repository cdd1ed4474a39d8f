package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"pixel-dither/internal/pipeline"
	"pixel-dither/internal/raster"
	"pixel-dither/internal/source"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process one image",
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringP("input", "i", "", "Input image (png, jpeg, gif, bmp, tiff, webp), raw .rgba[.zst] or .html page")
	processCmd.Flags().StringP("output", "o", "", "Output file (.png, .bmp, .rgba, .rgba.zst)")
	processCmd.Flags().Int("width", 0, "Raw input width (default: read from sidecar)")
	processCmd.Flags().Int("height", 0, "Raw input height (default: read from sidecar)")
	processCmd.Flags().String("fit", "", "Cover-scale the input to WxH before processing (viewport size for .html)")
	addParamFlags(processCmd.Flags())
	processCmd.MarkFlagRequired("input")
	processCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	fit, _ := cmd.Flags().GetString("fit")

	params, err := paramsFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	src, err := loadInput(cmd.Context(), inputPath, width, height, fit)
	if err != nil {
		return err
	}

	out, err := pipeline.Process(cmd.Context(), src, params)
	if err != nil {
		return fmt.Errorf("processing: %w", err)
	}

	if err := writeOutput(outputPath, out); err != nil {
		return err
	}

	fmt.Printf("Processed %dx%d (%s, threshold %g, pixel size %d, %s)\n",
		out.Width, out.Height, params.Mode, params.Threshold, params.PixelSize, params.ColorMode)
	fmt.Printf("Input:  %s\n", inputPath)
	fmt.Printf("Output: %s\n", outputPath)
	return nil
}

// defaultViewport sizes HTML captures when no --fit is given.
const defaultViewport = "800x480"

// pageRenderer turns an HTML document into an image.
type pageRenderer interface {
	CaptureHTML(ctx context.Context, html string) (image.Image, error)
	Close()
}

var newPageRenderer = func(ctx context.Context, w, h int) pageRenderer {
	return source.NewCapturer(ctx, w, h)
}

// loadInput reads an encoded image, a raw dump or an HTML page. For raw
// dumps without an explicit size the JSON sidecar is used. HTML pages are
// rendered in a headless browser at the --fit size.
func loadInput(ctx context.Context, path string, width, height int, fit string) (*raster.Buffer, error) {
	if source.IsHTML(path) {
		return renderHTMLInput(ctx, path, fit)
	}

	var (
		buf *raster.Buffer
		err error
	)

	switch {
	case source.IsRaw(path) && width > 0 && height > 0:
		buf, err = source.ReadRaw(path, width, height)
	case source.IsRaw(path):
		buf, err = source.ReadRawWithSidecar(path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		buf, _, err = source.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if fit == "" {
		return buf, nil
	}
	w, h, err := parseSize(fit)
	if err != nil {
		return nil, err
	}
	return source.FromImage(source.Cover(source.ToImage(buf), w, h)), nil
}

func renderHTMLInput(ctx context.Context, path, fit string) (*raster.Buffer, error) {
	if fit == "" {
		fit = defaultViewport
	}
	w, h, err := parseSize(fit)
	if err != nil {
		return nil, err
	}

	html, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	r := newPageRenderer(ctx, w, h)
	defer r.Close()

	img, err := r.CaptureHTML(ctx, string(html))
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", path, err)
	}
	return source.FromImage(img), nil
}

// writeOutput picks raw or encoded output by file extension.
func writeOutput(path string, buf *raster.Buffer) error {
	if source.IsRaw(path) {
		if _, err := source.WriteRaw(path, buf); err != nil {
			return err
		}
		return nil
	}

	format, err := source.FormatFromPath(path)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := source.Encode(&out, buf, format); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
