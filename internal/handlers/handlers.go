package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"vod-egress/internal/logging"
	"vod-egress/internal/manifest"
	"vod-egress/internal/relay"
	"vod-egress/internal/startup"
	"vod-egress/internal/storage"
)

const (
	hlsContentType = "application/vnd.apple.mpegurl"
	tsContentType  = "video/mp2t"
)

// SegmentDispatcher triggers transcode work for a missing segment. A nil
// reader means the bytes must be re-fetched from storage once Dispatch
// returns.
type SegmentDispatcher interface {
	Dispatch(ctx context.Context, container, video string, level, segment int) (io.ReadCloser, error)
}

// Handlers carries the collaborators every route needs.
type Handlers struct {
	provider   storage.Provider
	dispatcher SegmentDispatcher
	pipes      *relay.Relay
	wwwroot    string

	// newRenderer builds the manifest collaborator for one container's
	// store; injected so tests can substitute a canned renderer.
	newRenderer func(storage.BlobStore) manifest.Renderer
}

// New wires the handlers with explicit dependencies.
func New(provider storage.Provider, dispatcher SegmentDispatcher, pipes *relay.Relay, cfg *startup.Config) *Handlers {
	return &Handlers{
		provider:   provider,
		dispatcher: dispatcher,
		pipes:      pipes,
		wwwroot:    cfg.WWWRoot,
		newRenderer: func(store storage.BlobStore) manifest.Renderer {
			return manifest.NewServer(store)
		},
	}
}

// Router builds the route table.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	r.HandleFunc("/pipe/{handle}", h.PostPipe).Methods("POST")
	r.HandleFunc("/", h.Index).Methods("GET")
	r.PathPrefix("/wwwroot/").Handler(
		http.StripPrefix("/wwwroot/", http.FileServer(http.Dir(h.wwwroot))))

	r.HandleFunc("/{container}/{video}", h.GetVariantPlaylist).Methods("GET")
	r.HandleFunc("/{container}/{video}/{level}", h.GetMediaPlaylist).Methods("GET")
	r.HandleFunc("/{container}/{video}/{level}/{segment}", h.GetSegment).Methods("GET")

	return r
}

// Index redirects to the bundled player page.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/wwwroot/player.html", http.StatusMovedPermanently)
}

// notFound collapses an internal failure into the uniform 404 response.
func notFound(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		logging.Debug("request %s failed: %v", r.URL.Path, err)
	}
	w.WriteHeader(http.StatusNotFound)
}
