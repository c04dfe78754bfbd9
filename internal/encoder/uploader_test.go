package encoder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	delays   map[string]time.Duration
	failures map[string]error
}

func (f *fakeUploader) Upload(ctx context.Context, path string) error {
	if delay, ok := f.delays[path]; ok {
		time.Sleep(delay)
	}
	f.mu.Lock()
	f.uploaded = append(f.uploaded, path)
	f.mu.Unlock()
	return f.failures[path]
}

func TestUploadMediaAll(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	up := &fakeUploader{}

	if err := UploadMedia(context.Background(), up, set); err != nil {
		t.Fatalf("UploadMedia failed: %v", err)
	}
	if len(up.uploaded) != len(set.Streams) {
		t.Errorf("Expected %d uploads, got %d", len(set.Streams), len(up.uploaded))
	}
}

func TestUploadMediaRunsConcurrently(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	delays := make(map[string]time.Duration)
	for _, s := range set.Streams {
		delays[s.Output] = 50 * time.Millisecond
	}
	up := &fakeUploader{delays: delays}

	begin := time.Now()
	if err := UploadMedia(context.Background(), up, set); err != nil {
		t.Fatalf("UploadMedia failed: %v", err)
	}
	// Sequential uploads would take len(streams)*50ms.
	if elapsed := time.Since(begin); elapsed > 150*time.Millisecond {
		t.Errorf("Expected concurrent uploads, took %v", elapsed)
	}
}

func TestUploadMediaFirstErrorWins(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	first := errors.New("first failure")
	up := &fakeUploader{
		failures: map[string]error{
			set.Streams[0].Output: first,
			set.Streams[2].Output: errors.New("later failure"),
		},
		delays: map[string]time.Duration{
			set.Streams[2].Output: 50 * time.Millisecond,
		},
	}

	err := UploadMedia(context.Background(), up, set)
	if !errors.Is(err, first) {
		t.Errorf("Expected first failure, got %v", err)
	}
	// Every upload must still be awaited.
	if len(up.uploaded) != len(set.Streams) {
		t.Errorf("Expected all %d uploads attempted, got %d", len(set.Streams), len(up.uploaded))
	}
}

func TestUploadManifests(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	up := &fakeUploader{}

	if err := UploadManifests(context.Background(), up, set); err != nil {
		t.Fatalf("UploadManifests failed: %v", err)
	}

	want := len(set.Streams) + 2
	if len(up.uploaded) != want {
		t.Fatalf("Expected %d uploads, got %d", want, len(up.uploaded))
	}
	found := map[string]bool{}
	for _, p := range up.uploaded {
		found[p] = true
	}
	if !found[set.MPDManifest] || !found[set.HLSManifest] {
		t.Errorf("Expected both top-level manifests uploaded, got %v", up.uploaded)
	}
	for _, s := range set.Streams {
		if !found[s.Playlist] {
			t.Errorf("Expected playlist %s uploaded", s.Playlist)
		}
	}
}

func TestUploadManifestsError(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	cause := errors.New("upload refused")
	up := &fakeUploader{failures: map[string]error{set.HLSManifest: cause}}

	if err := UploadManifests(context.Background(), up, set); !errors.Is(err, cause) {
		t.Errorf("Expected upload error, got %v", err)
	}
}
