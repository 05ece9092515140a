// Package extract turns PDF files into the in-memory page model. It reads
// positioned text fragments with ledongthuc/pdf and assembles them into
// lines and word tokens with bounding boxes in top-left page coordinates,
// the convention the comparison stages and the renderer share.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/pdiff/internal/document"
	"github.com/ledongthuc/pdf"
)

const (
	// defaultFontSize substitutes for fragments that carry no size.
	defaultFontSize = 10.0
	// rowTolerance groups fragments whose baselines differ by at most this
	// many points into the same row.
	rowTolerance = 2.0
	// descentFactor extends a word box below the baseline.
	descentFactor = 0.25
)

// PDFExtractor extracts text and words from PDF files. The zero value is
// usable; New exists for symmetry with the other collaborators.
type PDFExtractor struct{}

// New creates a PDF extractor.
func New() *PDFExtractor { return &PDFExtractor{} }

// Extract parses the PDF at path into a Document. Pages that yield no text
// appear with empty text and no words so page indexes stay aligned.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (doc *document.Document, err error) {
	// The underlying parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parse pdf %q: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	total := reader.NumPage()
	doc = &document.Document{Pages: make([]document.Page, 0, total)}

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, extractPage(reader.Page(i), i))
	}
	return doc, nil
}

func extractPage(p pdf.Page, number int) document.Page {
	page := document.Page{Number: number}
	if p.V.IsNull() {
		return page
	}

	page.Width, page.Height = pageSize(p)

	frags := p.Content().Text
	rows := assembleRows(frags)

	var lines []string
	for _, row := range rows {
		words := buildWords(row, page.Height)
		if len(words) == 0 {
			continue
		}
		page.Words = append(page.Words, words...)
		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = w.Text
		}
		lines = append(lines, strings.Join(texts, " "))
	}
	page.Text = strings.Join(lines, "\n")
	return page
}

// pageSize reads the MediaBox, walking Parent links because the key is
// inheritable. Falls back to US Letter when absent.
func pageSize(p pdf.Page) (width, height float64) {
	width, height = 612, 792

	v := p.V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			x0 := mb.Index(0).Float64()
			y0 := mb.Index(1).Float64()
			x1 := mb.Index(2).Float64()
			y1 := mb.Index(3).Float64()
			if x1 > x0 && y1 > y0 {
				return x1 - x0, y1 - y0
			}
			break
		}
		v = v.Key("Parent")
	}
	return width, height
}
