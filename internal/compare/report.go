package compare

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Summary carries the derived counters of a report. ByPage is keyed by the
// page number as it serializes.
type Summary struct {
	Total  int            `json:"total"`
	ByPage map[string]int `json:"by_page"`
}

// Report is the structured record of all textual changes found by a
// comparison, independent of any visual rendering.
type Report struct {
	Changes []Change `json:"changes"`
	Summary Summary  `json:"summary"`
}

// BuildReport aggregates an ordered change list into a report. Input order
// is preserved; nothing is filtered or reordered. BuildReport is total and
// never fails.
func BuildReport(changes []Change) *Report {
	r := &Report{
		Changes: make([]Change, 0, len(changes)),
		Summary: Summary{ByPage: make(map[string]int)},
	}
	for _, c := range changes {
		r.Changes = append(r.Changes, c)
		r.Summary.ByPage[strconv.Itoa(c.Page)]++
	}
	r.Summary.Total = len(r.Changes)
	return r
}

// JSON serializes the report in the documented wire shape.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// Text renders the report as plain text: a header, the total count, then
// one block per change.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("Compare PDF — Change report\n")
	fmt.Fprintf(&b, "Total changes: %d\n\n", r.Summary.Total)
	for _, c := range r.Changes {
		label := "Added"
		if c.Kind == ChangeRemove {
			label = "Removed"
		}
		fmt.Fprintf(&b, "Page %d — %s:\n%s\n\n", c.Page, label, c.Text)
	}
	return b.String()
}
