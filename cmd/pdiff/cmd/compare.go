package cmd

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pdiff/internal/archive"
	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/MeKo-Tech/pdiff/internal/extract"
	"github.com/MeKo-Tech/pdiff/internal/render"
	"github.com/spf13/cobra"
)

// compareCmd represents the compare command.
var compareCmd = &cobra.Command{
	Use:   "compare <left.pdf> <right.pdf>",
	Short: "Compare two PDF documents",
	Long: `Compare the text of two PDF documents and report the differences.

By default the full pipeline runs: both documents are extracted, diffed at
line and word granularity, annotated copies are rendered with red and green
highlights, and everything is bundled into compare_result.zip in the output
directory.

With --no-render only the change report is produced, printed to stdout or
written with --output-file.

Examples:
  pdiff compare old.pdf new.pdf
  pdiff compare old.pdf new.pdf -o results/
  pdiff compare old.pdf new.pdf --no-render --format text
  pdiff compare old.pdf new.pdf --preview-dir previews/ --preview-width 800`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringP("output", "o", "compare_out", "output directory for artifacts")
	compareCmd.Flags().StringP("format", "f", "json", "report format for --no-render output (json, text)")
	compareCmd.Flags().String("output-file", "", "write the report to a file instead of stdout (with --no-render)")
	compareCmd.Flags().Bool("no-render", false, "skip rendering and packaging, only produce the report")
	compareCmd.Flags().Int("workers", 0, "max worker goroutines for page diffing (0=NumCPU)")
	compareCmd.Flags().Float64("scale", 0, "overlay raster resolution in pixels per point (0=config default)")
	compareCmd.Flags().String("preview-dir", "", "also write per-page highlight preview PNGs to this directory")
	compareCmd.Flags().Int("preview-width", 0, "preview image width in pixels (0=natural size)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	leftPath, rightPath := args[0], args[1]
	cfg := GetConfig()

	workers := cfg.Compare.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}

	scale := cfg.Render.Scale
	if cmd.Flags().Changed("scale") {
		scale, _ = cmd.Flags().GetFloat64("scale")
	}

	noRender, _ := cmd.Flags().GetBool("no-render")
	outDir, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output-file")
	previewDir, _ := cmd.Flags().GetString("preview-dir")
	previewWidth, _ := cmd.Flags().GetInt("preview-width")

	if format != "json" && format != "text" {
		return fmt.Errorf("unsupported report format: %q (expected json or text)", format)
	}

	builder := compare.NewBuilder().
		WithExtractor(extract.New()).
		WithWorkers(workers)
	if !noRender {
		builder = builder.
			WithRenderer(render.NewStamper(render.Config{Scale: scale})).
			WithArchiver(archive.New())
	}
	if cfg.Verbose {
		builder = builder.WithProgress(compare.NewConsoleProgress(os.Stderr, "compare: "))
	}

	comparer, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize comparer: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var res *compare.Result
	if noRender {
		res, err = comparer.Compare(ctx, leftPath, rightPath)
		if err != nil {
			return err
		}
		if err := writeReportOutput(cmd, res.Report, format, outputFile); err != nil {
			return err
		}
	} else {
		var art *compare.Artifacts
		res, art, err = comparer.CompareToArchive(ctx, leftPath, rightPath, outDir)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Total changes: %d\n", res.Report.Summary.Total)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Archive: %s\n", art.Archive)
	}

	if previewDir != "" {
		if err := writePreviews(previewDir, previewWidth, res); err != nil {
			return fmt.Errorf("failed to write previews: %w", err)
		}
	}
	return nil
}

// writeReportOutput prints the report to stdout or writes it to a file.
func writeReportOutput(cmd *cobra.Command, report *compare.Report, format, outputFile string) error {
	var data []byte
	if format == "text" {
		data = []byte(report.Text())
	} else {
		var err error
		data, err = report.JSON()
		if err != nil {
			return err
		}
		data = append(data, '\n')
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o600)
	}
	_, err := cmd.OutOrStdout().Write(data)
	return err
}

// writePreviews rasterizes the highlight maps of both sides into PNG files
// named <side>-page-<n>.png.
func writePreviews(dir string, width int, res *compare.Result) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	write := func(name string, hl compare.PageHighlights, pageW, pageH float64) error {
		img := render.RenderPreview(hl, pageW, pageH, width)
		path := filepath.Join(dir, fmt.Sprintf("%s-page-%d.png", name, hl.Page))
		f, err := os.Create(path) //nolint:gosec // G304: path is built from the preview directory flag
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		return png.Encode(f, img)
	}

	for _, hl := range res.LeftHighlights {
		var w, h float64
		if page := res.Left.Page(hl.Page); page != nil {
			w, h = page.Width, page.Height
		}
		if err := write("left", hl, w, h); err != nil {
			return err
		}
	}
	for _, hl := range res.RightHighlights {
		var w, h float64
		if page := res.Right.Page(hl.Page); page != nil {
			w, h = page.Width, page.Height
		}
		if err := write("right", hl, w, h); err != nil {
			return err
		}
	}
	return nil
}
