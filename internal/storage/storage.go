package storage

import (
	"context"
	"io"
	"net/url"
)

// BlobStore is the capability contract for one storage container. Paths are
// slash-separated and relative to the container, e.g. "movie" for a source
// video and "movie/level1/segment4.ts" for a produced segment.
type BlobStore interface {
	// Exists reports whether a blob is present at path.
	Exists(ctx context.Context, path string) bool

	// GetContent opens a blob for streaming reads. Returns ErrNotFound if
	// the blob does not exist.
	GetContent(ctx context.Context, path string) (io.ReadCloser, error)

	// GetMetadata returns the metadata string stored alongside the blob
	// (the probe JSON carrying the media duration).
	GetMetadata(ctx context.Context, path string) (string, error)

	// SetContent writes a blob from a byte stream, replacing any existing
	// content at path.
	SetContent(ctx context.Context, path string, content io.Reader) error

	// SetMetadata stores a metadata string alongside the blob at path.
	SetMetadata(ctx context.Context, path, metadata string) error
}

// URLSigner hands out time-limited signed URLs so a transcode job can read
// or write a single blob without holding long-lived credentials.
type URLSigner interface {
	SignedURL(ctx context.Context, container, path string, readOnly bool) (*url.URL, error)
}

// Provider opens the BlobStore for one container. The concrete backend
// (direct object store vs. remote proxy) is chosen at construction time.
type Provider interface {
	Open(ctx context.Context, container string) (BlobStore, error)
}
