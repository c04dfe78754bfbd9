package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

// proxyFixture spins up a fake storage proxy holding blobs and metadata in
// maps, and returns a ProxyStore pointed at it.
func proxyFixture(t *testing.T, blobs, metadata map[string]string) *ProxyStore {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/videos/")
		isMeta := strings.HasSuffix(key, "/metadata")
		key = strings.TrimSuffix(key, "/metadata")

		switch r.Method {
		case http.MethodHead, http.MethodGet:
			store := blobs
			if isMeta {
				store = metadata
			}
			value, ok := store[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if r.Method == http.MethodGet {
				io.WriteString(w, value)
			}
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			if isMeta {
				metadata[key] = string(body)
			} else {
				blobs[key] = string(body)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("Parsing test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("Parsing test server port: %v", err)
	}

	store, err := NewProxyProvider(u.Hostname(), port).Open(context.Background(), "videos")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store.(*ProxyStore)
}

func TestProxyStoreExists(t *testing.T) {
	store := proxyFixture(t, map[string]string{"movie": "source"}, map[string]string{})

	if !store.Exists(context.Background(), "movie") {
		t.Error("Expected movie to exist")
	}
	if store.Exists(context.Background(), "ghost") {
		t.Error("Expected ghost to be missing")
	}
}

func TestProxyStoreGetContent(t *testing.T) {
	store := proxyFixture(t, map[string]string{"movie/level0/segment1.ts": "segment bytes"}, map[string]string{})

	body, err := store.GetContent(context.Background(), "movie/level0/segment1.ts")
	if err != nil {
		t.Fatalf("GetContent failed: %v", err)
	}
	defer body.Close()

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("Reading content failed: %v", err)
	}
	if string(got) != "segment bytes" {
		t.Errorf("Expected segment bytes, got %q", got)
	}
}

func TestProxyStoreGetContentNotFound(t *testing.T) {
	store := proxyFixture(t, map[string]string{}, map[string]string{})

	_, err := store.GetContent(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestProxyStoreMetadataRoundTrip(t *testing.T) {
	store := proxyFixture(t, map[string]string{}, map[string]string{})

	probe := `{"format":{"duration":"23.5"}}`
	if err := store.SetMetadata(context.Background(), "movie", probe); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	got, err := store.GetMetadata(context.Background(), "movie")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if got != probe {
		t.Errorf("Expected %q, got %q", probe, got)
	}
}

func TestProxyStoreSetContent(t *testing.T) {
	blobs := map[string]string{}
	store := proxyFixture(t, blobs, map[string]string{})

	err := store.SetContent(context.Background(), "movie/level0/segment0.ts", strings.NewReader("new bytes"))
	if err != nil {
		t.Fatalf("SetContent failed: %v", err)
	}
	if blobs["movie/level0/segment0.ts"] != "new bytes" {
		t.Errorf("Expected blob stored, got %v", blobs)
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		code     int
		expected error
	}{
		{200, nil},
		{201, nil},
		{404, ErrNotFound},
		{401, ErrAuthentication},
		{403, ErrAuthentication},
	}

	for _, tt := range tests {
		got := statusError(tt.code)
		if !errors.Is(got, tt.expected) {
			t.Errorf("statusError(%d) = %v, want %v", tt.code, got, tt.expected)
		}
	}

	if err := statusError(500); err == nil {
		t.Error("Expected error for status 500")
	} else if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAuthentication) {
		t.Errorf("Expected generic HTTP error for 500, got %v", err)
	}
}
