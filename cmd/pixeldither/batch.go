package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pixel-dither/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Process many images, each on its own worker",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringP("output-dir", "o", "", "Output directory")
	batchCmd.Flags().String("format", "png", "Output format (png, bmp, rgba, rgba.zst)")
	batchCmd.Flags().String("fit", "", "Cover-scale every input to WxH before processing")
	batchCmd.Flags().IntP("jobs", "j", runtime.GOMAXPROCS(0), "Images processed concurrently")
	addParamFlags(batchCmd.Flags())
	batchCmd.MarkFlagRequired("output-dir")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("output-dir")
	format, _ := cmd.Flags().GetString("format")
	fit, _ := cmd.Flags().GetString("fit")
	jobs, _ := cmd.Flags().GetInt("jobs")

	params, err := paramsFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	outputs, err := batchOutputs(outDir, args, format)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(jobs, 1))

	for i, in := range args {
		out := outputs[i]
		g.Go(func() error {
			src, err := loadInput(ctx, in, 0, 0, fit)
			if err != nil {
				return err
			}
			res, err := pipeline.Process(ctx, src, params)
			if err != nil {
				return fmt.Errorf("processing %s: %w", in, err)
			}
			if err := writeOutput(out, res); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			fmt.Printf("%s → %s (%dx%d)\n", in, out, res.Width, res.Height)
			return nil
		})
	}

	return g.Wait()
}

// batchOutputs maps every input to its output path. Two inputs that would
// write the same file are rejected, since they run concurrently.
func batchOutputs(dir string, inputs []string, format string) ([]string, error) {
	outputs := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		out := batchOutputPath(dir, in, format)
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%s and %s both write %s", prev, in, out)
		}
		seen[out] = in
		outputs[i] = out
	}
	return outputs, nil
}

func batchOutputPath(dir, in, format string) string {
	base := filepath.Base(in)
	base = strings.TrimSuffix(base, ".zst")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"."+strings.TrimPrefix(format, "."))
}
