package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/MeKo-Tech/pdiff/internal/document"
	"github.com/MeKo-Tech/pdiff/internal/jobs"
	"github.com/MeKo-Tech/pdiff/internal/testutil"
	"github.com/stretchr/testify/require"
)

// stubExtractor serves canned documents keyed by upload filename.
type stubExtractor struct {
	docs map[string]*document.Document
	err  error
}

func (s *stubExtractor) Extract(_ context.Context, path string) (*document.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	if doc, ok := s.docs[filepath.Base(path)]; ok {
		return doc, nil
	}
	return testutil.NewDocument("fallback page"), nil
}

// stubRenderer copies the source file so artifact downloads have content.
type stubRenderer struct{}

func (s *stubRenderer) Capabilities() compare.Capabilities {
	return compare.Capabilities{TranslucentOverlay: true}
}

func (s *stubRenderer) Render(_ context.Context, src, dst string, _ []compare.PageHighlights) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

type stubArchiver struct{}

func (s *stubArchiver) Bundle(dstPath string, _ []compare.ArchiveEntry) error {
	return os.WriteFile(dstPath, []byte("PK-zip"), 0o600)
}

// newTestServer builds a server with stub collaborators and started workers.
func newTestServer(t *testing.T, ext compare.Extractor) *Server {
	t.Helper()

	comparer, err := compare.NewBuilder().
		WithExtractor(ext).
		WithRenderer(&stubRenderer{}).
		WithArchiver(&stubArchiver{}).
		Build()
	require.NoError(t, err)

	srv, err := NewServer(Config{
		CORSOrigin:  "*",
		MaxUploadMB: 10,
		WorkDir:     t.TempDir(),
		JobWorkers:  1,
		QueueSize:   4,
	}, comparer)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = srv.Close()
	})
	return srv
}

// defaultStubExtractor returns documents that differ in one word.
func defaultStubExtractor() *stubExtractor {
	return &stubExtractor{docs: map[string]*document.Document{
		"left-upload.pdf":  testutil.NewDocument("hello old world"),
		"right-upload.pdf": testutil.NewDocument("hello new world"),
	}}
}

// multipartUpload builds a POST /compare request with two file parts.
func multipartUpload(t *testing.T, fields map[string][]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range fields {
		fw, err := mw.CreateFormFile(field, field+".pdf")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/compare", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// waitForJob polls the store until the job reaches a terminal status.
func waitForJob(t *testing.T, srv *Server, id string) *jobs.Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job := srv.store.Get(id)
		require.NotNil(t, job, "job %s disappeared from the store", id)
		switch job.CurrentStatus() {
		case jobs.StatusCompleted, jobs.StatusFailed:
			return job
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("job %s never finished", id)
	return nil
}
