package extract

import (
	"sort"
	"strings"

	"github.com/MeKo-Tech/pdiff/internal/document"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// assembleRows orders text fragments into reading order: rows top to bottom
// (PDF Y grows upward, so descending Y), fragments left to right inside a
// row. Fragments whose baselines fall within rowTolerance share a row.
func assembleRows(frags []pdf.Text) [][]pdf.Text {
	if len(frags) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]pdf.Text
	for _, f := range sorted {
		n := len(rows)
		if n > 0 && rows[n-1][0].Y-f.Y <= rowTolerance {
			rows[n-1] = append(rows[n-1], f)
			continue
		}
		rows = append(rows, []pdf.Text{f})
	}

	// re-sort each row by X; grouping may have interleaved equal baselines
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// buildWords merges a row's fragments into word tokens. A whitespace
// fragment or a horizontal gap wider than a third of the font size closes
// the current word. Word text is NFC-normalized so both documents tokenize
// identically regardless of how their fonts encode composed characters.
func buildWords(row []pdf.Text, pageHeight float64) []document.Word {
	var words []document.Word

	var cur strings.Builder
	var x0, x1, y, size float64
	open := false

	flush := func() {
		if !open {
			return
		}
		text := strings.TrimSpace(cur.String())
		if text != "" {
			top := pageHeight - y - size
			if top < 0 {
				top = 0
			}
			words = append(words, document.Word{
				Text: norm.NFC.String(text),
				Box: document.Rect{
					X0:     x0,
					Top:    top,
					X1:     x1,
					Bottom: pageHeight - y + descentFactor*size,
				},
			})
		}
		cur.Reset()
		open = false
	}

	for _, f := range row {
		if strings.TrimSpace(f.S) == "" {
			flush()
			continue
		}

		fsize := f.FontSize
		if fsize <= 0 {
			fsize = defaultFontSize
		}

		gapLimit := fsize / 3
		if gapLimit < 1 {
			gapLimit = 1
		}
		if open && f.X-x1 > gapLimit {
			flush()
		}

		if !open {
			x0, y, size = f.X, f.Y, fsize
			x1 = f.X
			open = true
		}
		cur.WriteString(f.S)
		if end := f.X + f.W; end > x1 {
			x1 = end
		}
		if fsize > size {
			size = fsize
		}
		if f.Y < y {
			y = f.Y
		}
	}
	flush()
	return words
}
