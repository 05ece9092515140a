// Package render burns highlight maps into PDF pages. Rectangles are
// rasterized onto translucent per-page overlay images which pdfcpu stamps
// over the original page content, so the annotated copies keep their
// original text layer untouched.
package render

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/MeKo-Tech/pdiff/internal/document"
	"github.com/disintegration/imaging"
)

// Fill colors for the two highlight classes. Alpha is baked into the
// overlay so the stamp itself is applied at full opacity.
var (
	RemovedFill = color.NRGBA{R: 255, G: 0, B: 0, A: 90}
	AddedFill   = color.NRGBA{R: 0, G: 179, B: 0, A: 90}
)

// BuildOverlay rasterizes one page's highlight map onto a transparent
// canvas of scale pixels per point. The canvas spans the full page so the
// stamp aligns exactly when scaled back onto it.
func BuildOverlay(hl compare.PageHighlights, pageWidth, pageHeight, scale float64) *image.NRGBA {
	canvas := imaging.New(pixels(pageWidth, scale), pixels(pageHeight, scale), color.NRGBA{})
	canvas = paintRects(canvas, hl.Red, RemovedFill, scale)
	canvas = paintRects(canvas, hl.Green, AddedFill, scale)
	return canvas
}

func paintRects(canvas *image.NRGBA, rects []document.Rect, fill color.NRGBA, scale float64) *image.NRGBA {
	for _, r := range rects {
		w := pixels(r.Width(), scale)
		h := pixels(r.Height(), scale)
		patch := imaging.New(w, h, fill)
		canvas = imaging.Overlay(canvas, patch, image.Pt(
			int(r.X0*scale),
			int(r.Top*scale),
		), 1.0)
	}
	return canvas
}

// pixels converts a point length to a pixel count, at least one pixel so
// degenerate rects stay visible.
func pixels(points, scale float64) int {
	px := int(points*scale + 0.5)
	if px < 1 {
		px = 1
	}
	return px
}
