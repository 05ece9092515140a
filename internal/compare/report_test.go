package compare

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport_Empty(t *testing.T) {
	r := BuildReport(nil)

	assert.Equal(t, 0, r.Summary.Total)
	assert.NotNil(t, r.Changes)
	assert.NotNil(t, r.Summary.ByPage)
}

func TestBuildReport_SummaryConsistency(t *testing.T) {
	changes := []Change{
		{Page: 1, Kind: ChangeRemove, Text: "a"},
		{Page: 1, Kind: ChangeAdd, Text: "b"},
		{Page: 3, Kind: ChangeAdd, Text: "c"},
	}

	r := BuildReport(changes)

	assert.Equal(t, len(changes), r.Summary.Total)
	assert.Equal(t, changes, r.Changes)

	sum := 0
	for _, n := range r.Summary.ByPage {
		sum += n
	}
	assert.Equal(t, r.Summary.Total, sum)
	assert.Equal(t, 2, r.Summary.ByPage["1"])
	assert.Equal(t, 1, r.Summary.ByPage["3"])
}

func TestReport_JSONShape(t *testing.T) {
	r := BuildReport([]Change{{Page: 2, Kind: ChangeAdd, Text: "new"}})

	data, err := r.JSON()
	require.NoError(t, err)

	var decoded struct {
		Changes []struct {
			Page int    `json:"page"`
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"changes"`
		Summary struct {
			Total  int            `json:"total"`
			ByPage map[string]int `json:"by_page"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded.Changes, 1)
	assert.Equal(t, 2, decoded.Changes[0].Page)
	assert.Equal(t, "add", decoded.Changes[0].Type)
	assert.Equal(t, "new", decoded.Changes[0].Text)
	assert.Equal(t, 1, decoded.Summary.Total)
	assert.Equal(t, map[string]int{"2": 1}, decoded.Summary.ByPage)
}

func TestReport_JSONEmptyChangesIsArray(t *testing.T) {
	data, err := BuildReport(nil).JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"changes": []`)
}

func TestReport_Text(t *testing.T) {
	r := BuildReport([]Change{
		{Page: 1, Kind: ChangeRemove, Text: "old line"},
		{Page: 2, Kind: ChangeAdd, Text: "new line"},
	})

	text := r.Text()

	lines := strings.Split(text, "\n")
	assert.Equal(t, "Compare PDF — Change report", lines[0])
	assert.Equal(t, "Total changes: 2", lines[1])
	assert.Contains(t, text, "Page 1 — Removed:\nold line\n")
	assert.Contains(t, text, "Page 2 — Added:\nnew line\n")
}
