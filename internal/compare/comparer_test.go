package compare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/pdiff/internal/document"
	"github.com/MeKo-Tech/pdiff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor serves canned documents keyed by path.
type fakeExtractor struct {
	docs map[string]*document.Document
	errs map[string]error
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (*document.Document, error) {
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	doc, ok := f.docs[path]
	if !ok {
		return nil, errors.New("unknown document")
	}
	return doc, nil
}

type fakeRenderer struct {
	calls []string
	fail  bool
}

func (f *fakeRenderer) Capabilities() Capabilities {
	return Capabilities{TranslucentOverlay: true}
}

func (f *fakeRenderer) Render(ctx context.Context, src, dst string, pages []PageHighlights) error {
	if f.fail {
		return errors.New("overlay stamping broke")
	}
	f.calls = append(f.calls, dst)
	return os.WriteFile(dst, []byte("%PDF-fake "+src), 0o600)
}

type fakeArchiver struct {
	entries []ArchiveEntry
}

func (f *fakeArchiver) Bundle(dst string, entries []ArchiveEntry) error {
	f.entries = entries
	return os.WriteFile(dst, []byte("zip"), 0o600)
}

func newTestComparer(t *testing.T, ext Extractor, r Renderer, a Archiver) *Comparer {
	t.Helper()
	b := NewBuilder().WithExtractor(ext).WithWorkers(1)
	if r != nil {
		b = b.WithRenderer(r)
	}
	if a != nil {
		b = b.WithArchiver(a)
	}
	c, err := b.Build()
	require.NoError(t, err)
	return c
}

func TestBuilder_RequiresExtractor(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.Error(t, err)
}

func TestComparer_Compare(t *testing.T) {
	ext := &fakeExtractor{docs: map[string]*document.Document{
		"left.pdf":  testutil.NewDocument("hello world"),
		"right.pdf": testutil.NewDocument("hello there"),
	}}
	c := newTestComparer(t, ext, nil, nil)

	res, err := c.Compare(context.Background(), "left.pdf", "right.pdf")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Report.Summary.Total)
	require.Len(t, res.LeftHighlights, 1)
	assert.Len(t, res.LeftHighlights[0].Red, 1)
	assert.Len(t, res.RightHighlights[0].Green, 1)
}

func TestComparer_ExtractionFailureIsFatal(t *testing.T) {
	ext := &fakeExtractor{
		docs: map[string]*document.Document{"right.pdf": testutil.NewDocument("x")},
		errs: map[string]error{"left.pdf": errors.New("not a PDF")},
	}
	c := newTestComparer(t, ext, nil, nil)

	res, err := c.Compare(context.Background(), "left.pdf", "right.pdf")

	assert.Nil(t, res)
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "left.pdf", extErr.Path)
}

func TestComparer_CompareToArchive(t *testing.T) {
	ext := &fakeExtractor{docs: map[string]*document.Document{
		"left.pdf":  testutil.NewDocument("one two"),
		"right.pdf": testutil.NewDocument("one three"),
	}}
	renderer := &fakeRenderer{}
	archiver := &fakeArchiver{}
	c := newTestComparer(t, ext, renderer, archiver)

	outDir := t.TempDir()
	res, art, err := c.CompareToArchive(context.Background(), "left.pdf", "right.pdf", outDir)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotNil(t, art)

	// report files land on disk
	data, err := os.ReadFile(art.ReportJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total": 2`)
	_, err = os.Stat(art.ReportText)
	require.NoError(t, err)

	// both sides rendered
	assert.Equal(t, []string{art.LeftPDF, art.RightPDF}, renderer.calls)

	// archive entries use the contractual names
	names := make([]string, 0, len(archiver.entries))
	for _, e := range archiver.entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"report.json", "report.txt", "left.pdf", "right.pdf"}, names)
	assert.Equal(t, filepath.Join(outDir, "compare_result.zip"), art.Archive)
}

func TestComparer_RenderFailureKeepsReport(t *testing.T) {
	ext := &fakeExtractor{docs: map[string]*document.Document{
		"left.pdf":  testutil.NewDocument("a"),
		"right.pdf": testutil.NewDocument("b"),
	}}
	c := newTestComparer(t, ext, &fakeRenderer{fail: true}, &fakeArchiver{})

	res, art, err := c.CompareToArchive(context.Background(), "left.pdf", "right.pdf", t.TempDir())

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Nil(t, art)

	// the computed report survives a rendering failure
	require.NotNil(t, res)
	assert.Equal(t, 2, res.Report.Summary.Total)
}

func TestComparer_CompareToArchiveRequiresCollaborators(t *testing.T) {
	ext := &fakeExtractor{}
	c := newTestComparer(t, ext, nil, nil)

	_, _, err := c.CompareToArchive(context.Background(), "l", "r", t.TempDir())
	assert.Error(t, err)
}

func TestComparer_Capabilities(t *testing.T) {
	ext := &fakeExtractor{}

	bare := newTestComparer(t, ext, nil, nil)
	assert.False(t, bare.Capabilities().TranslucentOverlay)

	full := newTestComparer(t, ext, &fakeRenderer{}, nil)
	assert.True(t, full.Capabilities().TranslucentOverlay)
}

type countingProgress struct {
	starts, steps, completes int
}

func (p *countingProgress) OnStart(total int)              { p.starts++ }
func (p *countingProgress) OnStep(c, t int, s string)      { p.steps++ }
func (p *countingProgress) OnComplete()                    { p.completes++ }
func (p *countingProgress) OnError(step string, err error) {}

func TestComparer_WithProgressClones(t *testing.T) {
	ext := &fakeExtractor{docs: map[string]*document.Document{
		"left.pdf":  testutil.NewDocument("a"),
		"right.pdf": testutil.NewDocument("a"),
	}}
	base := newTestComparer(t, ext, nil, nil)

	counter := &countingProgress{}
	clone := base.WithProgress(counter)
	require.NotSame(t, base, clone)

	_, err := clone.Compare(context.Background(), "left.pdf", "right.pdf")
	require.NoError(t, err)

	assert.Equal(t, 1, counter.starts)
	assert.Equal(t, 4, counter.steps)
	assert.Equal(t, 1, counter.completes)

	// the original comparer keeps its own callback
	_, err = base.Compare(context.Background(), "left.pdf", "right.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, counter.starts)
}

func TestComparer_ContextCancelled(t *testing.T) {
	ext := &fakeExtractor{docs: map[string]*document.Document{
		"left.pdf":  testutil.NewDocument("a"),
		"right.pdf": testutil.NewDocument("b"),
	}}
	c := newTestComparer(t, ext, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compare(ctx, "left.pdf", "right.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
