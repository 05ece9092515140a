// Package server exposes the comparison engine over HTTP: multipart upload,
// asynchronous job tracking, artifact download and WebSocket progress.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/MeKo-Tech/pdiff/internal/jobs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	comparer    *compare.Comparer
	store       *jobs.Store
	runner      *jobs.Runner
	workDir     string
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	CORSOrigin       string
	MaxUploadMB      int64
	TimeoutSec       int
	WorkDir          string
	JobWorkers       int
	QueueSize        int
	RetentionMinutes int
}

// Addr returns the listen address for the configured host and port.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Retention returns the job retention duration, defaulting to one hour.
func (c Config) Retention() time.Duration {
	if c.RetentionMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// HealthResponse reports server liveness and rendering capabilities.
type HealthResponse struct {
	Status       string               `json:"status"`
	Version      string               `json:"version,omitempty"`
	Time         string               `json:"time"`
	Capabilities compare.Capabilities `json:"capabilities"`
}

// SubmitResponse acknowledges an accepted comparison job.
type SubmitResponse struct {
	JobID  string      `json:"job_id"`
	Status jobs.Status `json:"status"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a comparison server around the given comparer. It owns a
// job store and runner; call Start to launch the workers and Close to release
// the scratch directory.
func NewServer(config Config, comparer *compare.Comparer) (*Server, error) {
	workDir := config.WorkDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", "pdiff-server-*")
		if err != nil {
			return nil, fmt.Errorf("create work directory: %w", err)
		}
		workDir = dir
	} else if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	store := jobs.NewStore(config.Retention())
	runner := jobs.NewRunner(store, comparer, config.JobWorkers, config.QueueSize)

	return &Server{
		comparer:    comparer,
		store:       store,
		runner:      runner,
		workDir:     workDir,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// Start launches the job workers and the periodic store cleanup. Both stop
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	s.runner.Start(ctx)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.store.Cleanup()
			}
		}
	}()
}

// Close removes the server's scratch directory.
func (s *Server) Close() error {
	return os.RemoveAll(s.workDir)
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("POST /compare", s.corsMiddleware(s.compareHandler))
	mux.HandleFunc("GET /jobs/{id}", s.corsMiddleware(s.jobStatusHandler))
	mux.HandleFunc("GET /compare/{id}/report", s.corsMiddleware(s.reportHandler))
	mux.HandleFunc("GET /compare/{id}/left", s.corsMiddleware(s.artifactHandler(artifactLeft)))
	mux.HandleFunc("GET /compare/{id}/right", s.corsMiddleware(s.artifactHandler(artifactRight)))
	mux.HandleFunc("GET /compare/{id}/archive", s.corsMiddleware(s.artifactHandler(artifactArchive)))
	mux.HandleFunc("GET /compare/{id}/preview", s.corsMiddleware(s.previewHandler))
	mux.HandleFunc("GET /ws/jobs/{id}", s.jobWebSocketHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
}
