package render

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// RenderPreview rasterizes a highlight map onto a blank white page, for
// viewers that want the highlight geometry without the PDF content behind
// it. targetWidth scales the result (0 keeps the natural size of one pixel
// per point).
func RenderPreview(hl compare.PageHighlights, pageWidth, pageHeight float64, targetWidth int) image.Image {
	if pageWidth <= 0 || pageHeight <= 0 {
		pageWidth, pageHeight = 612, 792
	}

	canvas := imaging.New(pixels(pageWidth, 1), pixels(pageHeight, 1), color.White)
	canvas = paintRects(canvas, hl.Red, RemovedFill, 1)
	canvas = paintRects(canvas, hl.Green, AddedFill, 1)

	if targetWidth <= 0 || targetWidth == canvas.Bounds().Dx() {
		return canvas
	}

	targetHeight := int(float64(targetWidth) * pageHeight / pageWidth)
	dst := image.NewNRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)
	return dst
}
