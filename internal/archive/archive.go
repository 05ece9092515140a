// Package archive packages comparison artifacts into zip bundles.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/MeKo-Tech/pdiff/internal/compare"
)

// ZipArchiver bundles files into a deflate-compressed zip. The zero value
// is usable.
type ZipArchiver struct{}

// New creates a zip archiver.
func New() *ZipArchiver { return &ZipArchiver{} }

// Bundle writes the named entries into a zip archive at dstPath. Entry
// order is preserved. A failed bundle leaves no partial archive behind.
func (z *ZipArchiver) Bundle(dstPath string, entries []compare.ArchiveEntry) (err error) {
	out, err := os.Create(dstPath) //nolint:gosec // G304: caller-provided output path is expected
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dstPath)
		}
	}()

	zw := zip.NewWriter(out)
	for _, entry := range entries {
		if err = addEntry(zw, entry); err != nil {
			return fmt.Errorf("add %q: %w", entry.Name, err)
		}
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, entry compare.ArchiveEntry) error {
	in, err := os.Open(entry.Path) //nolint:gosec // G304: entry paths come from the orchestrator
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	w, err := zw.Create(entry.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
