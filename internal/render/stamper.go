package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// watermarkDesc positions each overlay image centered at full page size.
// The overlay is rendered with the page's exact aspect ratio, so relative
// scale 1.0 makes it cover the page edge to edge.
const watermarkDesc = "pos:c, scale:1.0 rel, rot:0"

// Config holds stamping options.
type Config struct {
	// Scale is the overlay raster resolution in pixels per point.
	Scale float64
}

// DefaultConfig returns the default stamping configuration (144 dpi).
func DefaultConfig() Config {
	return Config{Scale: 2.0}
}

// Stamper renders highlight maps into PDFs via pdfcpu image watermarks.
type Stamper struct {
	cfg Config
}

// NewStamper creates a stamper with the given configuration.
func NewStamper(cfg Config) *Stamper {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultConfig().Scale
	}
	return &Stamper{cfg: cfg}
}

// Capabilities reports that this renderer produces translucent overlays.
func (s *Stamper) Capabilities() compare.Capabilities {
	return compare.Capabilities{TranslucentOverlay: true}
}

// Render writes a copy of srcPath to dstPath with the given per-page
// highlight maps burned in. Pages without highlights pass through
// unchanged; a document with no highlights at all is copied verbatim.
func (s *Stamper) Render(ctx context.Context, srcPath, dstPath string, pages []compare.PageHighlights) error {
	if !anyHighlights(pages) {
		return copyFile(srcPath, dstPath)
	}

	dims, err := api.PageDimsFile(srcPath)
	if err != nil {
		return fmt.Errorf("read page dimensions: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "pdiff-overlay-*")
	if err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	stamps := make(map[int]*model.Watermark)
	for i, dim := range dims {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i >= len(pages) || pages[i].Empty() {
			continue
		}

		overlay := BuildOverlay(pages[i], dim.Width, dim.Height, s.cfg.Scale)
		overlayPath := filepath.Join(tempDir, fmt.Sprintf("page_%d.png", i+1))
		if err := imaging.Save(overlay, overlayPath); err != nil {
			return fmt.Errorf("write overlay for page %d: %w", i+1, err)
		}

		wm, err := api.ImageWatermark(overlayPath, watermarkDesc, true, false, types.POINTS)
		if err != nil {
			return fmt.Errorf("build watermark for page %d: %w", i+1, err)
		}
		stamps[i+1] = wm
	}

	if len(stamps) == 0 {
		return copyFile(srcPath, dstPath)
	}

	if err := api.AddWatermarksMapFile(srcPath, dstPath, stamps, nil); err != nil {
		return fmt.Errorf("stamp overlays: %w", err)
	}
	return nil
}

func anyHighlights(pages []compare.PageHighlights) bool {
	for _, p := range pages {
		if !p.Empty() {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: caller-provided document path is expected
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) //nolint:gosec // G304: caller-provided output path is expected
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy document: %w", err)
	}
	return out.Close()
}
