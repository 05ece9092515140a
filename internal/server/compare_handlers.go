package server

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/MeKo-Tech/pdiff/internal/jobs"
	"github.com/MeKo-Tech/pdiff/internal/render"
)

type artifactKind int

const (
	artifactLeft artifactKind = iota
	artifactRight
	artifactArchive
)

// compareHandler accepts two PDF uploads and schedules an asynchronous
// comparison job. The response carries the job id for polling.
func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, 2*limit)

	if err := r.ParseMultipartForm(2 * limit); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeError(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	left, leftHeader, err := r.FormFile("left")
	if err != nil {
		s.writeError(w, "No left file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = left.Close() }()

	right, rightHeader, err := r.FormFile("right")
	if err != nil {
		s.writeError(w, "No right file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = right.Close() }()

	if leftHeader.Size > limit || rightHeader.Size > limit {
		s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(leftHeader.Size))
	uploadSizeBytes.Observe(float64(rightHeader.Size))

	jobDir, err := os.MkdirTemp(s.workDir, "compare-*")
	if err != nil {
		s.writeError(w, "Failed to allocate job directory", http.StatusInternalServerError)
		return
	}

	leftPath, err := saveUpload(left, filepath.Join(jobDir, "left-upload.pdf"))
	if err != nil {
		s.writeError(w, "Failed to store left file", http.StatusInternalServerError)
		return
	}
	rightPath, err := saveUpload(right, filepath.Join(jobDir, "right-upload.pdf"))
	if err != nil {
		s.writeError(w, "Failed to store right file", http.StatusInternalServerError)
		return
	}

	job, err := jobs.NewJob(leftHeader.Filename, rightHeader.Filename,
		leftPath, rightPath, filepath.Join(jobDir, "result"))
	if err != nil {
		s.writeError(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	if err := s.runner.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			s.writeError(w, "Server busy, try again later", http.StatusServiceUnavailable)
			return
		}
		s.writeError(w, fmt.Sprintf("Failed to schedule job: %v", err), http.StatusInternalServerError)
		return
	}
	compareJobsSubmitted.Inc()

	s.writeJSON(w, http.StatusAccepted, SubmitResponse{JobID: job.ID, Status: job.CurrentStatus()})
}

func saveUpload(src multipart.File, dstPath string) (string, error) {
	dst, err := os.Create(dstPath) //nolint:gosec // G304: path is server-generated
	if err != nil {
		return "", err
	}
	defer func() { _ = dst.Close() }()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return dstPath, nil
}

// jobStatusHandler returns the current job snapshot.
func (s *Server) jobStatusHandler(w http.ResponseWriter, r *http.Request) {
	job := s.store.Get(r.PathValue("id"))
	if job == nil {
		s.writeError(w, "Job not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, job.Snapshot())
}

// finishedJob resolves the job for an artifact request. It writes the error
// response itself and returns nil when the artifacts are not available.
func (s *Server) finishedJob(w http.ResponseWriter, r *http.Request) *jobs.Job {
	job := s.store.Get(r.PathValue("id"))
	if job == nil {
		s.writeError(w, "Job not found", http.StatusNotFound)
		return nil
	}
	switch job.CurrentStatus() {
	case jobs.StatusCompleted:
		return job
	case jobs.StatusFailed:
		s.writeError(w, "Job failed: "+job.Snapshot().Error, http.StatusConflict)
		return nil
	default:
		s.writeError(w, "Job not finished", http.StatusConflict)
		return nil
	}
}

// reportHandler serves the change report, as JSON by default or as plain
// text with ?format=text.
func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	job := s.finishedJob(w, r)
	if job == nil {
		return
	}
	art := job.Artifacts()

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		http.ServeFile(w, r, art.ReportText)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, art.ReportJSON)
}

// artifactHandler serves one of the rendered documents or the result archive
// as a download.
func (s *Server) artifactHandler(kind artifactKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job := s.finishedJob(w, r)
		if job == nil {
			return
		}
		art := job.Artifacts()

		var path, name, contentType string
		switch kind {
		case artifactLeft:
			path, name, contentType = art.LeftPDF, compare.ArtifactLeftPDF, "application/pdf"
		case artifactRight:
			path, name, contentType = art.RightPDF, compare.ArtifactRightPDF, "application/pdf"
		case artifactArchive:
			path, name, contentType = art.Archive, compare.ArchiveName, "application/zip"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		http.ServeFile(w, r, path)
	}
}

// previewHandler rasterizes the highlight map of one page as a PNG. Query
// parameters: side (left|right, default left), page (default 1), width
// (target pixel width, default natural size).
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	job := s.finishedJob(w, r)
	if job == nil {
		return
	}
	res := job.Result()

	side := r.URL.Query().Get("side")
	if side == "" {
		side = "left"
	}
	highlights := res.LeftHighlights
	doc := res.Left
	switch side {
	case "left":
	case "right":
		highlights = res.RightHighlights
		doc = res.Right
	default:
		s.writeError(w, "side must be left or right", http.StatusBadRequest)
		return
	}

	pageNum := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, "invalid page number", http.StatusBadRequest)
			return
		}
		pageNum = n
	}

	width := 0
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, "invalid width", http.StatusBadRequest)
			return
		}
		width = n
	}

	var hl compare.PageHighlights
	for _, page := range highlights {
		if page.Page == pageNum {
			hl = page
			break
		}
	}

	var pageW, pageH float64
	if page := doc.Page(pageNum); page != nil {
		pageW, pageH = page.Width, page.Height
	} else if hl.Empty() {
		s.writeError(w, "page not found", http.StatusNotFound)
		return
	}

	img := render.RenderPreview(hl, pageW, pageH, width)
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.writeError(w, "failed to encode preview", http.StatusInternalServerError)
	}
}
