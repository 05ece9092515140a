// Package document defines the in-memory page model produced by text
// extraction and consumed by the comparison stages. Values are treated as
// immutable once built.
package document

// Rect is an axis-aligned bounding box in page coordinates (points),
// top-left origin: Top < Bottom, X0 < X1.
type Rect struct {
	X0     float64 `json:"x0"`
	Top    float64 `json:"top"`
	X1     float64 `json:"x1"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the rect.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rect.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Word is a single extracted token with its bounding box.
type Word struct {
	Text string `json:"text"`
	Box  Rect   `json:"bbox"`
}

// Page holds the extracted content of one document page.
type Page struct {
	Number int     `json:"page_number"` // 1-based
	Width  float64 `json:"width"`       // points
	Height float64 `json:"height"`      // points
	Text   string  `json:"text"`        // raw extracted text, possibly empty
	Words  []Word  `json:"words"`       // reading order as extracted
}

// Document is an ordered sequence of pages, indexed from 1.
type Document struct {
	Pages []Page `json:"pages"`
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Page returns the page with the given 1-based number, or nil if the
// document has no such page.
func (d *Document) Page(number int) *Page {
	if d == nil || number < 1 || number > len(d.Pages) {
		return nil
	}
	return &d.Pages[number-1]
}

// WordTexts returns the page's word tokens as a plain string slice.
// Bounding boxes are looked up by index afterwards; position is never part
// of token equality.
func (p *Page) WordTexts() []string {
	if p == nil || len(p.Words) == 0 {
		return nil
	}
	texts := make([]string, len(p.Words))
	for i, w := range p.Words {
		texts[i] = w.Text
	}
	return texts
}
