package compare

import "github.com/MeKo-Tech/pdiff/internal/document"

// PageHighlights is the highlight map for one page of one document side.
// Red rects mark removed words, green rects mark added words. Which side a
// map belongs to determines which class is populated: left maps carry red,
// right maps carry green. Rects are emitted one per word and never merged.
type PageHighlights struct {
	Page  int             `json:"page"` // 1-based
	Red   []document.Rect `json:"red"`
	Green []document.Rect `json:"green"`
}

// Empty reports whether the page has no highlight rectangles.
func (h PageHighlights) Empty() bool {
	return len(h.Red) == 0 && len(h.Green) == 0
}

// RectCount returns the total number of rectangles on the page.
func (h PageHighlights) RectCount() int {
	return len(h.Red) + len(h.Green)
}
