package compare

import (
	"strings"

	"github.com/MeKo-Tech/pdiff/internal/align"
	"github.com/MeKo-Tech/pdiff/internal/document"
)

// DiffLines runs the line-granularity pass over both documents and returns
// changes in document order (page ascending, opcode order within a page).
//
// Pages are paired strictly by index; a page present on one side only is
// diffed against an empty counterpart. Changes whose joined text is blank
// after trimming are dropped, so whitespace-only differences never surface.
// Workers bounds the per-page parallelism (<= 0 means one worker per CPU).
func DiffLines(left, right *document.Document, workers int) []Change {
	pages := maxPageCount(left, right)

	perPage := mapPages(pages, workers, func(idx int) []Change {
		return diffPageLines(left.Page(idx+1), right.Page(idx+1), idx+1)
	})

	var changes []Change
	for _, pc := range perPage {
		changes = append(changes, pc...)
	}
	return changes
}

func diffPageLines(left, right *document.Page, pageNum int) []Change {
	linesLeft := pageLines(left)
	linesRight := pageLines(right)

	var changes []Change
	appendChange := func(kind ChangeKind, lines []string) {
		blob := strings.Join(lines, "\n")
		if strings.TrimSpace(blob) == "" {
			return
		}
		changes = append(changes, Change{Page: pageNum, Kind: kind, Text: blob})
	}

	for _, op := range align.Diff(linesLeft, linesRight) {
		switch op.Tag {
		case align.OpReplace:
			appendChange(ChangeRemove, linesLeft[op.I1:op.I2])
			appendChange(ChangeAdd, linesRight[op.J1:op.J2])
		case align.OpDelete:
			appendChange(ChangeRemove, linesLeft[op.I1:op.I2])
		case align.OpInsert:
			appendChange(ChangeAdd, linesRight[op.J1:op.J2])
		case align.OpEqual:
			// unchanged content contributes nothing
		}
	}
	return changes
}

// pageLines splits a page's text into lines. A nil page or empty text maps
// to an empty sequence, never to a single empty line.
func pageLines(p *document.Page) []string {
	if p == nil {
		return nil
	}
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func maxPageCount(left, right *document.Document) int {
	n := left.PageCount()
	if m := right.PageCount(); m > n {
		n = m
	}
	return n
}
