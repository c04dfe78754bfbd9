package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"vod-egress/internal/logging"
)

// PostPipe ingests an encoder job's output stream and routes it chunk by
// chunk into the sink registered under {handle}. The relay pipe blocks
// until the response side drains, so a slow client applies backpressure
// all the way back to this body read. Responds 202 once the stream is
// relayed completely, 400 on any failure.
func (h *Handlers) PostPipe(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	defer r.Body.Close()

	buf := make([]byte, 64*1024)
	for {
		n, err := r.Body.Read(buf)
		if n > 0 {
			logging.Debug("pipe %s: read %d bytes from body", handle, n)
			if rerr := h.pipes.Route(handle, buf[:n]); rerr != nil {
				logging.Error("pipe %s: route failed: %v", handle, rerr)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			logging.Error("pipe %s: body read failed: %v", handle, err)
			if aerr := h.pipes.Abort(handle, err); aerr != nil {
				logging.Error("pipe %s: abort failed: %v", handle, aerr)
			}
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	if err := h.pipes.Close(handle); err != nil {
		logging.Error("pipe %s: close failed: %v", handle, err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
