package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"vod-egress/internal/logging"
	"vod-egress/internal/manifest"
	"vod-egress/internal/metrics"
	"vod-egress/internal/storage"
)

// GetSegment serves {container}/{video}/level{L}/segment{S}.ts. A cache hit
// streams straight from storage; a miss dispatches a transcode job and
// either streams live through the pipe relay or re-fetches the committed
// blob once the job finishes.
func (h *Handlers) GetSegment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, video := vars["container"], vars["video"]

	level, err := parseSegmentLevel(vars["level"])
	if err != nil {
		notFound(w, r, err)
		return
	}
	segment, err := parseSegmentIndex(vars["segment"])
	if err != nil {
		notFound(w, r, err)
		return
	}

	ctx := r.Context()
	store, err := h.provider.Open(ctx, container)
	if err != nil {
		notFound(w, r, err)
		return
	}

	// A segment for a video that does not exist must 404 without ever
	// dispatching a job.
	if !store.Exists(ctx, video) {
		notFound(w, r, fmt.Errorf("video %s/%s: %w", container, video, storage.ErrNotFound))
		return
	}

	blobPath := manifest.SegmentPath(video, level, segment)
	content, err := store.GetContent(ctx, blobPath)
	if err == nil {
		metrics.SegmentCacheHits.Inc()
		h.streamSegment(w, r, content)
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		notFound(w, r, err)
		return
	}

	metrics.SegmentCacheMisses.Inc()
	live, err := h.dispatcher.Dispatch(ctx, container, video, level, segment)
	if err != nil {
		notFound(w, r, err)
		return
	}

	if live != nil {
		h.streamSegment(w, r, live)
		return
	}

	// Non-streaming path: the dispatcher already waited for completion;
	// the blob is either committed now or the request fails cleanly.
	content, err = store.GetContent(ctx, blobPath)
	if err != nil {
		notFound(w, r, err)
		return
	}
	h.streamSegment(w, r, content)
}

// streamSegment copies segment bytes to the client, flushing after every
// chunk so live relay bytes reach the player as they arrive.
func (h *Handlers) streamSegment(w http.ResponseWriter, r *http.Request, content io.ReadCloser) {
	defer content.Close()

	// A relay-fed reader blocks until the job posts bytes, which may never
	// happen; closing it when the client goes away unblocks the pending
	// read so the handler can return.
	stop := context.AfterFunc(r.Context(), func() { content.Close() })
	defer stop()

	w.Header().Set("Content-Type", tsContentType)
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 64*1024)
	for {
		n, err := content.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				logging.Debug("client gone while streaming %s: %v", r.URL.Path, werr)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				logging.Debug("segment stream %s ended: %v", r.URL.Path, err)
			}
			return
		}
	}
}

// parseSegmentLevel extracts L from "level{L}".
func parseSegmentLevel(name string) (int, error) {
	if !strings.HasPrefix(name, "level") {
		return 0, fmt.Errorf("malformed level path %q", name)
	}
	level, err := strconv.Atoi(strings.TrimPrefix(name, "level"))
	if err != nil {
		return 0, fmt.Errorf("parsing level from %q: %w", name, err)
	}
	return level, nil
}

// parseSegmentIndex extracts S from "segment{S}.ts".
func parseSegmentIndex(name string) (int, error) {
	if !strings.HasPrefix(name, "segment") || !strings.HasSuffix(name, ".ts") {
		return 0, fmt.Errorf("malformed segment name %q", name)
	}
	segment, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "segment"), ".ts"))
	if err != nil {
		return 0, fmt.Errorf("parsing segment index from %q: %w", name, err)
	}
	return segment, nil
}
