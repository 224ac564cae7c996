package adapthttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("log line is not json: %q", raw)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := (&Server{}).WithLogger(zerolog.New(&buf))

	var seenInHandler string
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		seenInHandler = w.Header().Get(RequestIDHeader)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	req := httptest.NewRequest(http.MethodGet, "/test-path", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.loggingMiddleware(nextHandler).ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}
	if seenInHandler != "req-42" {
		t.Errorf("Expected request id header before the handler runs, got %q", seenInHandler)
	}

	lines := decodeLogLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["request_id"] != "req-42" {
		t.Errorf("Handler log line missing request id: %v", lines[0])
	}
	access := lines[1]
	if access["method"] != "GET" || access["path"] != "/test-path" || access["status"] != float64(418) {
		t.Errorf("Access log missing expected fields: %v", access)
	}
	if access["level"] != "warn" {
		t.Errorf("Expected 4xx to log at warn, got %v", access["level"])
	}
}

func TestRecoverMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := (&Server{}).WithLogger(zerolog.New(&buf))

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	s.recoverMiddleware(panicking).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patients", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Errorf("Panic value leaked to the client: %s", w.Body.String())
	}
	lines := decodeLogLines(t, &buf)
	if len(lines) != 1 || lines[0]["panic"] != "boom" {
		t.Errorf("Expected one panic log line, got %s", buf.String())
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(http.ErrBodyNotAllowed); got != http.StatusInternalServerError {
		t.Errorf("Expected 500 for an unknown error, got %d", got)
	}
}
