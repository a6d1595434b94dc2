// Command flint is the headless driver: it rasterizes an HTML file to
// a PNG image.
package main

import (
	"fmt"
	"os"

	"github.com/flintweb/flint/log"
	"github.com/flintweb/flint/page"
	"github.com/flintweb/flint/render"
	"github.com/spf13/cobra"
)

var (
	flagOutput  string
	flagWidth   int
	flagHeight  int
	flagUserCSS string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "flint",
		Short: "flint renders HTML/CSS documents",
	}

	renderCmd := &cobra.Command{
		Use:   "render <input.html>",
		Short: "Rasterize an HTML file to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&flagOutput, "output", "o", "out.png", "output PNG path")
	renderCmd.Flags().IntVar(&flagWidth, "width", 800, "viewport width in pixels")
	renderCmd.Flags().IntVar(&flagHeight, "height", 0, "output height (0 = document height)")
	renderCmd.Flags().StringVar(&flagUserCSS, "user-css", "", "path to an extra user stylesheet")
	renderCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(renderCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		log.SetLevel(log.DebugLevel)
	}

	input := args[0]
	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	userCSS := ""
	if flagUserCSS != "" {
		data, err := os.ReadFile(flagUserCSS)
		if err != nil {
			return fmt.Errorf("read %s: %w", flagUserCSS, err)
		}
		userCSS = string(data)
	}

	opts := page.Options{URL: input, UserCSS: userCSS}

	// First pass measures the document height.
	probe := render.NewRaster(flagWidth, flagWidth)
	doc := page.FromHTML(string(source), probe, opts)
	doc.Render(flagWidth)
	height := flagHeight
	if height <= 0 {
		height = doc.Size().Height
		if height <= 0 {
			height = flagWidth
		}
	}
	doc.Close()

	backend := render.NewRaster(flagWidth, height)
	doc = page.FromHTML(string(source), backend, opts)
	defer doc.Close()
	doc.Render(flagWidth)
	doc.Draw()

	if err := backend.Canvas.SavePNG(flagOutput); err != nil {
		return fmt.Errorf("write %s: %w", flagOutput, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "rendered %s (%dx%d) to %s\n",
		input, flagWidth, height, flagOutput)
	return nil
}
