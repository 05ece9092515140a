package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_MissingFile(t *testing.T) {
	e := New()

	doc, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))

	assert.Nil(t, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pdf")
}

func TestExtract_MalformedFileDoesNotPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\nnot really a pdf"), 0o600))

	e := New()
	doc, err := e.Extract(context.Background(), path)

	assert.Nil(t, doc)
	assert.Error(t, err)
}
