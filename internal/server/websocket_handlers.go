package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/pdiff/internal/jobs"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

const (
	wsPollInterval  = 250 * time.Millisecond
	wsPingInterval  = 30 * time.Second
	wsWriteDeadline = 10 * time.Second
)

// jobWebSocketHandler streams job progress snapshots until the job reaches a
// terminal status. The client receives one JSON message per state change and
// a final message with the terminal snapshot.
func (s *Server) jobWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	job := s.store.Get(r.PathValue("id"))
	if job == nil {
		s.writeError(w, "Job not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "job_id", job.ID, "remote_addr", r.RemoteAddr)

	// Drain client messages so pongs and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.streamJobProgress(conn, job)
}

// streamJobProgress polls the job and pushes snapshots over the connection.
func (s *Server) streamJobProgress(conn *websocket.Conn, job *jobs.Job) {
	poll := time.NewTicker(wsPollInterval)
	defer poll.Stop()
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	var last jobs.View
	if !s.sendJobView(conn, job.Snapshot(), &last) {
		return
	}

	for {
		select {
		case <-ping.C:
			deadline := time.Now().Add(wsWriteDeadline)
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
				return
			}
		case <-poll.C:
			view := job.Snapshot()
			if !s.sendJobView(conn, view, &last) {
				return
			}
			if view.Status == jobs.StatusCompleted || view.Status == jobs.StatusFailed {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(view.Status))
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteDeadline))
				return
			}
		}
	}
}

// sendJobView pushes the view when it differs from the last one sent.
// Returns false when the connection is no longer usable.
func (s *Server) sendJobView(conn *websocket.Conn, view jobs.View, last *jobs.View) bool {
	if view.Status == last.Status && view.Progress == last.Progress && view.Error == last.Error {
		return true
	}
	*last = view

	data, err := json.Marshal(view)
	if err != nil {
		slog.Error("failed to marshal job view", "error", err)
		return false
	}

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
	return true
}
