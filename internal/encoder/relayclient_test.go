package encoder

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRelayClientSend(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Reading body failed: %v", err)
		}
		received = body
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewRelayClient(srv.URL + "/pipe/abc")
	if err := c.Send(context.Background(), strings.NewReader("segment bytes")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if string(received) != "segment bytes" {
		t.Errorf("Expected segment bytes, got %q", received)
	}
}

func TestRelayClientRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewRelayClient(srv.URL + "/pipe/abc")
	if err := c.Send(context.Background(), strings.NewReader("bytes")); err == nil {
		t.Fatal("Expected error on non-202 response")
	}
}

func TestRelayClientSendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_0.mp4")
	if err := os.WriteFile(path, []byte("packaged output"), 0o644); err != nil {
		t.Fatalf("Writing fixture failed: %v", err)
	}

	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewRelayClient(srv.URL + "/pipe/abc")
	if err := c.SendFile(context.Background(), path); err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if string(received) != "packaged output" {
		t.Errorf("Expected file contents, got %q", received)
	}
}

func TestRelayClientSendFileMissing(t *testing.T) {
	c := NewRelayClient("http://localhost/pipe/abc")
	if err := c.SendFile(context.Background(), "/no/such/file"); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
