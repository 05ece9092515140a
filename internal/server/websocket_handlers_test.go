package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/pdiff/internal/jobs"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialJobSocket(t *testing.T, srv *Server, jobID string) *websocket.Conn {
	t.Helper()

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/jobs/" + jobID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestJobWebSocket_StreamsUntilTerminal(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())
	mux := newTestMux(t, srv)

	resp := submitCompare(t, srv, mux)
	conn := dialJobSocket(t, srv, resp.JobID)

	deadline := time.Now().Add(5 * time.Second)
	var last jobs.View
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Server closes the connection after the terminal snapshot.
			break
		}
		require.NoError(t, json.Unmarshal(data, &last))
		if last.Status == jobs.StatusCompleted || last.Status == jobs.StatusFailed {
			break
		}
	}

	assert.Equal(t, jobs.StatusCompleted, last.Status)
	assert.Equal(t, resp.JobID, last.ID)
	assert.Equal(t, last.Progress.Total, last.Progress.Current)
}

func TestJobWebSocket_UnknownJob(t *testing.T) {
	srv := newTestServer(t, defaultStubExtractor())

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/jobs/no-such-job"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		_ = conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
