// Package testutil provides helpers for building synthetic documents in
// tests. Word boxes are laid out on a simple grid so geometric assertions
// stay readable.
package testutil

import (
	"strings"

	"github.com/MeKo-Tech/pdiff/internal/document"
)

const (
	pageWidth  = 612.0
	pageHeight = 792.0
	wordWidth  = 40.0
	wordHeight = 10.0
	lineGap    = 4.0
	margin     = 36.0
)

// NewDocument builds a document from one string per page. Each page's words
// are derived from the text by whitespace splitting and placed left to
// right, top to bottom on a fixed grid.
func NewDocument(pageTexts ...string) *document.Document {
	doc := &document.Document{}
	for i, text := range pageTexts {
		doc.Pages = append(doc.Pages, NewPage(i+1, text))
	}
	return doc
}

// NewPage builds a single page with grid-placed words.
func NewPage(number int, text string) document.Page {
	page := document.Page{
		Number: number,
		Width:  pageWidth,
		Height: pageHeight,
		Text:   text,
	}
	for li, line := range strings.Split(text, "\n") {
		top := margin + float64(li)*(wordHeight+lineGap)
		for wi, tok := range strings.Fields(line) {
			x0 := margin + float64(wi)*(wordWidth+8)
			page.Words = append(page.Words, document.Word{
				Text: tok,
				Box: document.Rect{
					X0:     x0,
					Top:    top,
					X1:     x0 + wordWidth,
					Bottom: top + wordHeight,
				},
			})
		}
	}
	return page
}

// WordBox returns the grid box NewPage assigns to the word at the given
// zero-based line and column.
func WordBox(line, col int) document.Rect {
	top := margin + float64(line)*(wordHeight+lineGap)
	x0 := margin + float64(col)*(wordWidth+8)
	return document.Rect{X0: x0, Top: top, X1: x0 + wordWidth, Bottom: top + wordHeight}
}
