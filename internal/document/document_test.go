package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Extents(t *testing.T) {
	r := Rect{X0: 10, Top: 20, X1: 40, Bottom: 32}
	assert.Equal(t, 30.0, r.Width())
	assert.Equal(t, 12.0, r.Height())
}

func TestDocument_PageLookup(t *testing.T) {
	doc := &Document{Pages: []Page{
		{Number: 1, Text: "first"},
		{Number: 2, Text: "second"},
	}}

	assert.Equal(t, 2, doc.PageCount())
	assert.Equal(t, "second", doc.Page(2).Text)
	assert.Nil(t, doc.Page(0))
	assert.Nil(t, doc.Page(3))

	var nilDoc *Document
	assert.Equal(t, 0, nilDoc.PageCount())
	assert.Nil(t, nilDoc.Page(1))
}

func TestPage_WordTexts(t *testing.T) {
	page := &Page{Words: []Word{
		{Text: "alpha"}, {Text: "beta"},
	}}
	assert.Equal(t, []string{"alpha", "beta"}, page.WordTexts())

	var nilPage *Page
	assert.Nil(t, nilPage.WordTexts())
	assert.Nil(t, (&Page{}).WordTexts())
}
