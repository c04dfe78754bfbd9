package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/pipe/2f4a9c", "/pipe/:handle"},
		{"/wwwroot/player.html", "/wwwroot/*"},
		{"/videos/movie.m3u8", "/:container/:video.m3u8"},
		{"/videos/movie/level1.m3u8", "/:container/:video/:level.m3u8"},
		{"/videos/movie/level1/segment4.ts", "/:container/:video/:level/:segment.ts"},
		{"/healthz", "/healthz"},
		{"/version", "/version"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizePath(tt.path)
			if got != tt.expected {
				t.Errorf("normalizePath(%s) = %s, want %s", tt.path, got, tt.expected)
			}
		})
	}
}

func TestMetricsMiddlewarePassthrough(t *testing.T) {
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/videos/movie.m3u8", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected wrapped handler status, got %d", rec.Code)
	}
}

func TestLoggerPreservesStatusAndBody(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("gone"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/videos/ghost.m3u8", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if rec.Body.String() != "gone" {
		t.Errorf("Expected body preserved, got %q", rec.Body.String())
	}
}

func TestResponseWriterSingleHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusAccepted {
		t.Errorf("Expected first status kept, got %d", rw.statusCode)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected 202 written, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/videos/movie.m3u8", nil))
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/videos/movie.m3u8", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
}
