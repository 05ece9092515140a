package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pdiff/internal/document"
)

// Contractual artifact names. Consumers of the result archive rely on them.
const (
	ArtifactReportJSON = "report.json"
	ArtifactReportText = "report.txt"
	ArtifactLeftPDF    = "left.pdf"
	ArtifactRightPDF   = "right.pdf"
	ArchiveName        = "compare_result.zip"
)

// Extractor turns a document file into the in-memory page model. Word order
// inside a page is the extractor's reading order; the engine never re-sorts.
type Extractor interface {
	Extract(ctx context.Context, path string) (*document.Document, error)
}

// Capabilities describes what the rendering collaborator can do. It is
// populated at construction time so callers can inspect the rendering path
// up front instead of discovering degraded behavior at run time.
type Capabilities struct {
	// TranslucentOverlay is true when the renderer burns highlight
	// rectangles into the page as translucent fills.
	TranslucentOverlay bool `json:"translucent_overlay"`
}

// Renderer burns highlight rectangles into a copy of the source document.
type Renderer interface {
	Capabilities() Capabilities
	Render(ctx context.Context, srcPath, dstPath string, pages []PageHighlights) error
}

// ArchiveEntry names one file inside a result bundle.
type ArchiveEntry struct {
	Name string // entry name inside the archive
	Path string // source file on disk
}

// Archiver packages the named files into a single archive at dstPath.
type Archiver interface {
	Bundle(dstPath string, entries []ArchiveEntry) error
}

// Result is the terminal artifact of the engine: the change report plus the
// per-page highlight maps for both sides. The extracted documents are kept
// so callers can look up page geometry afterwards.
type Result struct {
	Report          *Report
	LeftHighlights  []PageHighlights
	RightHighlights []PageHighlights
	Left            *document.Document
	Right           *document.Document
}

// Artifacts lists the files written by CompareToArchive.
type Artifacts struct {
	ReportJSON string
	ReportText string
	LeftPDF    string
	RightPDF   string
	Archive    string
}

// Comparer orchestrates extraction, the two diff passes, report building,
// rendering and packaging for one comparison at a time. A Comparer is safe
// for concurrent use; each invocation owns its own documents and buffers.
type Comparer struct {
	extractor Extractor
	renderer  Renderer
	archiver  Archiver
	workers   int
	progress  ProgressCallback
}

// Builder constructs a Comparer with fluent configuration.
type Builder struct {
	c   Comparer
	err error
}

// NewBuilder creates a comparer builder with defaults.
func NewBuilder() *Builder {
	return &Builder{c: Comparer{progress: NoOpProgress{}}}
}

// WithExtractor sets the extraction collaborator (required).
func (b *Builder) WithExtractor(e Extractor) *Builder {
	b.c.extractor = e
	return b
}

// WithRenderer sets the rendering collaborator. Without one, Compare still
// works but CompareToArchive refuses to run.
func (b *Builder) WithRenderer(r Renderer) *Builder {
	b.c.renderer = r
	return b
}

// WithArchiver sets the packaging collaborator.
func (b *Builder) WithArchiver(a Archiver) *Builder {
	b.c.archiver = a
	return b
}

// WithWorkers bounds per-page parallelism (<= 0 means one worker per CPU).
func (b *Builder) WithWorkers(n int) *Builder {
	b.c.workers = n
	return b
}

// WithProgress sets the progress callback.
func (b *Builder) WithProgress(p ProgressCallback) *Builder {
	if p != nil {
		b.c.progress = p
	}
	return b
}

// Build validates the configuration and returns the comparer.
func (b *Builder) Build() (*Comparer, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.c.extractor == nil {
		return nil, errors.New("comparer requires an extractor")
	}
	c := b.c
	return &c, nil
}

// WithProgress returns a copy of the comparer that reports progress to p.
// The receiver is left untouched, so one shared comparer can serve many
// concurrent invocations with distinct callbacks.
func (c *Comparer) WithProgress(p ProgressCallback) *Comparer {
	clone := *c
	if p != nil {
		clone.progress = p
	}
	return &clone
}

// Capabilities returns the rendering capabilities, or the zero value when no
// renderer is configured.
func (c *Comparer) Capabilities() Capabilities {
	if c.renderer == nil {
		return Capabilities{}
	}
	return c.renderer.Capabilities()
}

// Compare extracts both documents, runs the line and word passes and builds
// the report. It performs no rendering or packaging. An extraction failure
// on either side aborts the whole comparison with an *ExtractionError.
func (c *Comparer) Compare(ctx context.Context, leftPath, rightPath string) (*Result, error) {
	const totalSteps = 4
	c.progress.OnStart(totalSteps)

	res, err := c.compare(ctx, leftPath, rightPath, totalSteps)
	if err != nil {
		return nil, err
	}
	c.progress.OnComplete()
	return res, nil
}

func (c *Comparer) compare(ctx context.Context, leftPath, rightPath string, totalSteps int) (*Result, error) {
	left, err := c.extract(ctx, leftPath)
	if err != nil {
		return nil, err
	}
	c.progress.OnStep(1, totalSteps, "extracted left document")

	right, err := c.extract(ctx, rightPath)
	if err != nil {
		return nil, err
	}
	c.progress.OnStep(2, totalSteps, "extracted right document")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	changes := DiffLines(left, right, c.workers)
	c.progress.OnStep(3, totalSteps, "line diff")

	leftHL, rightHL := DiffWords(left, right, c.workers)
	c.progress.OnStep(4, totalSteps, "word diff")

	return &Result{
		Report:          BuildReport(changes),
		LeftHighlights:  leftHL,
		RightHighlights: rightHL,
		Left:            left,
		Right:           right,
	}, nil
}

func (c *Comparer) extract(ctx context.Context, path string) (*document.Document, error) {
	doc, err := c.extractor.Extract(ctx, path)
	if err != nil {
		extErr := &ExtractionError{Path: path, Err: err}
		c.progress.OnError("extract", extErr)
		return nil, extErr
	}
	return doc, nil
}

// CompareToArchive runs the full pipeline: compare, write the report files,
// render both annotated documents and bundle everything into
// compare_result.zip under outDir.
//
// On a rendering or packaging failure the returned *Result is still
// populated with the computed report, so callers may surface it even though
// no artifacts exist.
func (c *Comparer) CompareToArchive(ctx context.Context, leftPath, rightPath, outDir string) (*Result, *Artifacts, error) {
	if c.renderer == nil {
		return nil, nil, errors.New("comparer has no renderer configured")
	}
	if c.archiver == nil {
		return nil, nil, errors.New("comparer has no archiver configured")
	}

	const totalSteps = 7
	c.progress.OnStart(totalSteps)

	res, err := c.compare(ctx, leftPath, rightPath, totalSteps)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return res, nil, fmt.Errorf("create output directory: %w", err)
	}

	art := &Artifacts{
		ReportJSON: filepath.Join(outDir, ArtifactReportJSON),
		ReportText: filepath.Join(outDir, ArtifactReportText),
		LeftPDF:    filepath.Join(outDir, ArtifactLeftPDF),
		RightPDF:   filepath.Join(outDir, ArtifactRightPDF),
		Archive:    filepath.Join(outDir, ArchiveName),
	}

	if err := c.writeReport(res.Report, art); err != nil {
		return res, nil, err
	}

	if err := c.render(ctx, leftPath, art.LeftPDF, res.LeftHighlights); err != nil {
		return res, nil, err
	}
	c.progress.OnStep(5, totalSteps, "rendered left document")

	if err := c.render(ctx, rightPath, art.RightPDF, res.RightHighlights); err != nil {
		return res, nil, err
	}
	c.progress.OnStep(6, totalSteps, "rendered right document")

	entries := []ArchiveEntry{
		{Name: ArtifactReportJSON, Path: art.ReportJSON},
		{Name: ArtifactReportText, Path: art.ReportText},
		{Name: ArtifactLeftPDF, Path: art.LeftPDF},
		{Name: ArtifactRightPDF, Path: art.RightPDF},
	}
	if err := c.archiver.Bundle(art.Archive, entries); err != nil {
		err = fmt.Errorf("bundle artifacts: %w", err)
		c.progress.OnError("archive", err)
		return res, nil, err
	}
	c.progress.OnStep(7, totalSteps, "archived artifacts")

	c.progress.OnComplete()
	return res, art, nil
}

func (c *Comparer) writeReport(report *Report, art *Artifacts) error {
	data, err := report.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(art.ReportJSON, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactReportJSON, err)
	}
	if err := os.WriteFile(art.ReportText, []byte(report.Text()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", ArtifactReportText, err)
	}
	return nil
}

func (c *Comparer) render(ctx context.Context, src, dst string, pages []PageHighlights) error {
	if err := c.renderer.Render(ctx, src, dst, pages); err != nil {
		renderErr := &RenderError{Path: src, Err: err}
		c.progress.OnError("render", renderErr)
		return renderErr
	}
	return nil
}
