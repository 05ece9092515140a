package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/MeKo-Tech/pdiff/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T, srv *Server) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	return mux
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.Capabilities.TranslucentOverlay)
	assert.NotEmpty(t, resp.Time)
}

func submitCompare(t *testing.T, srv *Server, mux *http.ServeMux) SubmitResponse {
	t.Helper()

	req := multipartUpload(t, map[string][]byte{
		"left":  []byte("%PDF-left"),
		"right": []byte("%PDF-right"),
	})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)
	return resp
}

func TestCompareHandler_AcceptsJob(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	job := waitForJob(t, srv, resp.JobID)
	assert.Equal(t, jobs.StatusCompleted, job.CurrentStatus())
}

func TestCompareHandler_MissingFile(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	req := multipartUpload(t, map[string][]byte{"left": []byte("%PDF-left")})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "right")
}

func TestJobStatusHandler(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	waitForJob(t, srv, resp.JobID)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/"+resp.JobID, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var view jobs.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, resp.JobID, view.ID)
	assert.Equal(t, jobs.StatusCompleted, view.Status)
	assert.Equal(t, "left.pdf", view.LeftName)
}

func TestJobStatusHandler_NotFound(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/no-such-job", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandler_JSONAndText(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	waitForJob(t, srv, resp.JobID)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compare/"+resp.JobID+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report compare.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.Total) // one removed line, one added line

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compare/"+resp.JobID+"/report?format=text", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Change report")
}

func TestArtifactHandlers_ServeDownloads(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	waitForJob(t, srv, resp.JobID)

	tests := []struct {
		path        string
		contentType string
		body        string
	}{
		{"/compare/" + resp.JobID + "/left", "application/pdf", "%PDF-left"},
		{"/compare/" + resp.JobID + "/right", "application/pdf", "%PDF-right"},
		{"/compare/" + resp.JobID + "/archive", "application/zip", "PK-zip"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		require.Equal(t, http.StatusOK, rec.Code, tt.path)
		assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"), tt.path)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment", tt.path)
		assert.Equal(t, tt.body, rec.Body.String(), tt.path)
	}
}

func TestArtifactHandler_UnfinishedJobConflicts(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())

	// job registered but never scheduled, stays pending
	job, err := jobs.NewJob("a.pdf", "b.pdf", "a", "b", "out")
	require.NoError(t, err)
	srv.store.Put(job)

	mux := newTestMux(t, srv)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compare/"+job.ID+"/archive", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPreviewHandler_ReturnsPNG(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	waitForJob(t, srv, resp.JobID)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/compare/"+resp.JobID+"/preview?side=right&page=1&width=300", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestPreviewHandler_BadSide(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	waitForJob(t, srv, resp.JobID)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/compare/"+resp.JobID+"/preview?side=middle", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewHandler_PageOutOfRange(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	waitForJob(t, srv, resp.JobID)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/compare/"+resp.JobID+"/preview?page=99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
