package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/pdiff/internal/archive"
	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/MeKo-Tech/pdiff/internal/extract"
	"github.com/MeKo-Tech/pdiff/internal/render"
	"github.com/MeKo-Tech/pdiff/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the comparison API",
	Long: `Start an HTTP server that provides REST API endpoints for PDF comparison.

The server provides the following endpoints:
  POST /compare              - Upload two PDFs, returns a job id
  GET  /jobs/{id}            - Poll job status and progress
  GET  /compare/{id}/report  - Change report (json or ?format=text)
  GET  /compare/{id}/left    - Annotated left document
  GET  /compare/{id}/right   - Annotated right document
  GET  /compare/{id}/archive - Zip bundle with all artifacts
  GET  /compare/{id}/preview - Highlight preview PNG per page
  GET  /ws/jobs/{id}         - WebSocket progress stream
  GET  /health               - Health check endpoint
  GET  /metrics              - Prometheus metrics

Examples:
  pdiff serve
  pdiff serve --port 8080
  pdiff serve --host 0.0.0.0 --port 3000`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	host := cfg.Server.Host
	if cmd.Flags().Changed("host") {
		host, _ = cmd.Flags().GetString("host")
	}

	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}

	corsOrigin := cfg.Server.CORSOrigin
	if cmd.Flags().Changed("cors-origin") {
		corsOrigin, _ = cmd.Flags().GetString("cors-origin")
	}

	maxUploadSize := cfg.Server.MaxUploadMB
	if cmd.Flags().Changed("max-upload-size") {
		maxUploadSize, _ = cmd.Flags().GetInt("max-upload-size")
	}

	timeout := cfg.Server.TimeoutSec
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetInt("timeout")
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if cmd.Flags().Changed("shutdown-timeout") {
		shutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}

	workDir := cfg.Server.WorkDir
	if cmd.Flags().Changed("work-dir") {
		workDir, _ = cmd.Flags().GetString("work-dir")
	}

	jobWorkers := cfg.Server.JobWorkers
	if cmd.Flags().Changed("job-workers") {
		jobWorkers, _ = cmd.Flags().GetInt("job-workers")
	}

	queueSize := cfg.Server.QueueSize
	if cmd.Flags().Changed("queue-size") {
		queueSize, _ = cmd.Flags().GetInt("queue-size")
	}

	retention := cfg.Server.RetentionMinutes
	if cmd.Flags().Changed("retention") {
		retention, _ = cmd.Flags().GetInt("retention")
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comparer, err := compare.NewBuilder().
		WithExtractor(extract.New()).
		WithRenderer(render.NewStamper(render.Config{Scale: cfg.Render.Scale})).
		WithArchiver(archive.New()).
		WithWorkers(cfg.Compare.Workers).
		Build()
	if err != nil {
		return fmt.Errorf("failed to initialize comparer: %w", err)
	}

	serverConfig := server.Config{
		Host:             host,
		Port:             port,
		CORSOrigin:       corsOrigin,
		MaxUploadMB:      int64(maxUploadSize),
		TimeoutSec:       timeout,
		WorkDir:          workDir,
		JobWorkers:       jobWorkers,
		QueueSize:        queueSize,
		RetentionMinutes: retention,
	}

	compareServer, err := server.NewServer(serverConfig, comparer)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer func() { _ = compareServer.Close() }()

	compareServer.Start(ctx)

	mux := http.NewServeMux()
	compareServer.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              serverConfig.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(timeout) * time.Second,
		WriteTimeout:      time.Duration(timeout) * time.Second,
	}

	go func() {
		slog.Info("Starting comparison server", "host", host, "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled, initiating shutdown")
	}

	slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(shutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server shutdown completed")
	}

	// Stop job workers and clean up scratch files.
	cancel()
	if err := compareServer.Close(); err != nil {
		slog.Error("Server cleanup error", "error", err)
	}

	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size per file in MB")
	serveCmd.Flags().Int("timeout", 120, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().String("work-dir", "", "scratch directory for uploads and artifacts (default: temp dir)")
	serveCmd.Flags().Int("job-workers", 2, "number of concurrent comparison jobs")
	serveCmd.Flags().Int("queue-size", 16, "maximum number of queued jobs")
	serveCmd.Flags().Int("retention", 60, "minutes to keep finished jobs before eviction")
}
