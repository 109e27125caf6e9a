package logger

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWriter_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")
	With("pipeline").Info("registry_loaded", "count", 3)
	out := buf.String()
	for _, want := range []string{`"msg":"registry_loaded"`, `"component":"pipeline"`, `"count":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestAccessMiddleware_LogsErrorsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&buf, "warn", "text")
	h := AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search", nil))
	out := buf.String()
	if !strings.Contains(out, "http_access") || !strings.Contains(out, "status=400") || !strings.Contains(out, "bytes=3") {
		t.Fatalf("unexpected access log: %q", out)
	}

	buf.Reset()
	ok := AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if buf.Len() != 0 {
		t.Fatalf("2xx access log should be below warn, got %q", buf.String())
	}
}
