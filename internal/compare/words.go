package compare

import (
	"github.com/MeKo-Tech/pdiff/internal/align"
	"github.com/MeKo-Tech/pdiff/internal/document"
)

// DiffWords runs the word-granularity pass over both documents and returns
// per-page highlight maps for the left and right side. The two returned
// slices always have identical length, max(page counts), indexed by page.
//
// Words compare by text only; bounding boxes ride along and surface in the
// output rects. The pass is independent of DiffLines: neither is derived
// from the other.
func DiffWords(left, right *document.Document, workers int) (leftHL, rightHL []PageHighlights) {
	pages := maxPageCount(left, right)

	type pagePair struct {
		left  PageHighlights
		right PageHighlights
	}

	perPage := mapPages(pages, workers, func(idx int) pagePair {
		l, r := diffPageWords(left.Page(idx+1), right.Page(idx+1), idx+1)
		return pagePair{left: l, right: r}
	})

	leftHL = make([]PageHighlights, pages)
	rightHL = make([]PageHighlights, pages)
	for i, p := range perPage {
		leftHL[i] = p.left
		rightHL[i] = p.right
	}
	return leftHL, rightHL
}

func diffPageWords(left, right *document.Page, pageNum int) (PageHighlights, PageHighlights) {
	leftHL := PageHighlights{Page: pageNum}
	rightHL := PageHighlights{Page: pageNum}

	tokensLeft := left.WordTexts()
	tokensRight := right.WordTexts()

	for _, op := range align.Diff(tokensLeft, tokensRight) {
		if op.Tag == align.OpDelete || op.Tag == align.OpReplace {
			for k := op.I1; k < op.I2; k++ {
				leftHL.Red = append(leftHL.Red, left.Words[k].Box)
			}
		}
		if op.Tag == align.OpInsert || op.Tag == align.OpReplace {
			for k := op.J1; k < op.J2; k++ {
				rightHL.Green = append(rightHL.Green, right.Words[k].Box)
			}
		}
	}
	return leftHL, rightHL
}
