package compare

import "fmt"

// ExtractionError reports that a source document could not be parsed into
// text and words. It is fatal: no partial report or artifacts are produced.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %q: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// RenderError reports that the highlight-overlay collaborator failed. It is
// fatal for artifact generation, but the report computed before rendering
// remains valid and may still be surfaced by the caller.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering failed for %q: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
