package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixel-dither/internal/source"
)

var testcardCmd = &cobra.Command{
	Use:   "testcard",
	Short: "Write a synthetic gradient test card",
	RunE:  runTestcard,
}

func init() {
	testcardCmd.Flags().StringP("output", "o", "", "Output file (.png, .bmp, .rgba, .rgba.zst)")
	testcardCmd.Flags().Int("width", 800, "Card width")
	testcardCmd.Flags().Int("height", 480, "Card height")
	testcardCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(testcardCmd)
}

func runTestcard(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}

	buf := source.FromImage(source.TestCard(width, height))
	if err := writeOutput(outputPath, buf); err != nil {
		return err
	}

	fmt.Printf("Test card %dx%d → %s\n", width, height, outputPath)
	return nil
}
