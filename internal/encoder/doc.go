// Package encoder implements the worker-side transcode pipeline that runs
// inside a dispatched job: a codec stage feeding per-rendition byte pipes,
// a packaging stage draining them, and an upload fan-out delivering the
// packaged artifacts. The stages run concurrently and are joined so that
// the first failure cancels the rest while every stage is still awaited.
package encoder
