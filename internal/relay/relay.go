package relay

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"vod-egress/internal/metrics"
)

// ErrUnknownHandle is returned when routing to or closing a handle that was
// never allocated or has already been closed.
var ErrUnknownHandle = errors.New("relay: unknown or closed handle")

// Relay is the process-local table of open byte sinks. It supports
// concurrent Allocate/Route/Close from independent request handlers; each
// handle's sink is owned by exactly one allocator/poster pair.
type Relay struct {
	mu    sync.Mutex
	sinks map[string]*io.PipeWriter
}

// New creates an empty relay.
func New() *Relay {
	return &Relay{sinks: make(map[string]*io.PipeWriter)}
}

// Allocate creates a connected sink pair, registers the write end under a
// fresh handle and returns the handle together with the read end. The read
// end is wired into a client-facing response body; the handle is embedded
// in the job's output argument.
func (r *Relay) Allocate() (string, io.ReadCloser) {
	pr, pw := io.Pipe()
	handle := uuid.NewString()

	r.mu.Lock()
	r.sinks[handle] = pw
	r.mu.Unlock()

	metrics.RelayActiveHandles.Inc()
	return handle, pr
}

// Route writes one chunk into the sink registered under handle. The pipe
// blocks until the reader drains it, so backpressure on the response stream
// propagates to the inbound HTTP read instead of buffering.
func (r *Relay) Route(handle string, chunk []byte) error {
	r.mu.Lock()
	pw, ok := r.sinks[handle]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}

	n, err := pw.Write(chunk)
	if err != nil {
		// The reader went away (client disconnect); tear the handle down
		// so the poster stops immediately.
		r.remove(handle)
		return fmt.Errorf("relay: writing to sink %s: %w", handle, err)
	}
	metrics.RelayBytesRouted.Add(float64(n))
	return nil
}

// Close signals end-of-stream to the read end and deregisters the handle.
// Closing twice, or closing a handle that never existed, returns
// ErrUnknownHandle.
func (r *Relay) Close(handle string) error {
	pw := r.remove(handle)
	if pw == nil {
		return ErrUnknownHandle
	}
	return pw.Close()
}

// Abort closes the sink with an error, surfacing it to the reader, and
// deregisters the handle.
func (r *Relay) Abort(handle string, err error) error {
	pw := r.remove(handle)
	if pw == nil {
		return ErrUnknownHandle
	}
	return pw.CloseWithError(err)
}

// Active returns the number of live handles.
func (r *Relay) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sinks)
}

func (r *Relay) remove(handle string) *io.PipeWriter {
	r.mu.Lock()
	pw, ok := r.sinks[handle]
	if ok {
		delete(r.sinks, handle)
	}
	r.mu.Unlock()
	if ok {
		metrics.RelayActiveHandles.Dec()
	}
	return pw
}
