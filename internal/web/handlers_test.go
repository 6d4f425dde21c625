package web

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justestif/guess-the-song/internal/logging"
)

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "error")
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}
	h := NewHandlers(nil, nil, nil, logger)

	w := brokenWriter{httptest.NewRecorder()}
	h.writeJSON(w, http.StatusOK, map[string]string{"track": "One More Time"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if out := buf.String(); !strings.Contains(out, "writing response") || !strings.Contains(out, "connection reset") {
		t.Errorf("log output = %q, want the write failure", out)
	}
}

func TestWriteError_Shape(t *testing.T) {
	h := NewHandlers(nil, nil, nil, logging.Discard())

	w := httptest.NewRecorder()
	h.writeError(w, http.StatusNotFound, "Could not find any tracks")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Could not find any tracks"}` {
		t.Errorf("body = %s", got)
	}
}
