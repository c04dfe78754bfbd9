package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// GetVariantPlaylist serves {container}/{video}.m3u8: the master playlist
// listing one entry per ladder rung.
func (h *Handlers) GetVariantPlaylist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, video := vars["container"], vars["video"]

	if !strings.HasSuffix(video, ".m3u8") {
		notFound(w, r, nil)
		return
	}

	store, err := h.provider.Open(r.Context(), container)
	if err != nil {
		notFound(w, r, err)
		return
	}

	playlist, err := h.newRenderer(store).VariantPlaylist(r.Context(), video)
	if err != nil {
		notFound(w, r, err)
		return
	}

	w.Header().Set("Content-Type", hlsContentType)
	fmt.Fprint(w, playlist)
}

// GetMediaPlaylist serves {container}/{video}/level{L}.m3u8: the rendition
// playlist whose segment count derives from the stored duration metadata.
func (h *Handlers) GetMediaPlaylist(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	container, video := vars["container"], vars["video"]

	level, err := parsePlaylistLevel(vars["level"])
	if err != nil {
		notFound(w, r, err)
		return
	}

	store, err := h.provider.Open(r.Context(), container)
	if err != nil {
		notFound(w, r, err)
		return
	}

	playlist, err := h.newRenderer(store).MediaPlaylist(r.Context(), video, level)
	if err != nil {
		notFound(w, r, err)
		return
	}

	w.Header().Set("Content-Type", hlsContentType)
	fmt.Fprint(w, playlist)
}

// parsePlaylistLevel extracts L from "level{L}.m3u8".
func parsePlaylistLevel(name string) (int, error) {
	if !strings.HasPrefix(name, "level") || !strings.HasSuffix(name, ".m3u8") {
		return 0, fmt.Errorf("malformed rendition playlist name %q", name)
	}
	level, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "level"), ".m3u8"))
	if err != nil {
		return 0, fmt.Errorf("parsing level from %q: %w", name, err)
	}
	return level, nil
}
