package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ProxyProvider opens containers on a remote storage-hosting node reached
// over plain HTTP. It is selected instead of the direct object store when
// blobs live on a node-local volume fronted by the storage proxy service.
type ProxyProvider struct {
	client      *http.Client
	nodeAddress string
	port        int
}

// NewProxyProvider creates a provider talking to the storage proxy at
// nodeAddress:port.
func NewProxyProvider(nodeAddress string, port int) *ProxyProvider {
	return &ProxyProvider{
		client:      &http.Client{},
		nodeAddress: nodeAddress,
		port:        port,
	}
}

// Open returns a BlobStore forwarding every operation to the proxy node.
// The proxy has no container listing, so existence is discovered lazily by
// the first blob operation.
func (p *ProxyProvider) Open(_ context.Context, container string) (BlobStore, error) {
	return &ProxyStore{
		client:    p.client,
		base:      fmt.Sprintf("http://%s:%d/%s", p.nodeAddress, p.port, container),
		container: container,
	}, nil
}

// ProxyStore implements BlobStore against the storage proxy's HTTP surface:
// GET/POST {base}/{path} for content, GET/POST {base}/{path}/metadata for
// metadata and HEAD {base}/{path} for existence checks.
type ProxyStore struct {
	client    *http.Client
	base      string
	container string
}

func (s *ProxyStore) url(blobPath string, metadata bool) string {
	u := s.base + "/" + strings.TrimPrefix(blobPath, "/")
	if metadata {
		u += "/metadata"
	}
	return u
}

// Exists reports whether a blob is present at path.
func (s *ProxyStore) Exists(ctx context.Context, blobPath string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url(blobPath, false), nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GetContent opens a blob for streaming reads.
func (s *ProxyStore) GetContent(ctx context.Context, blobPath string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(blobPath, false), nil)
	if err != nil {
		return nil, NewHTTPError("building proxy request", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewHTTPError("proxy get content", err)
	}
	if err := statusError(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// GetMetadata returns the probe metadata stored with the blob.
func (s *ProxyStore) GetMetadata(ctx context.Context, blobPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(blobPath, true), nil)
	if err != nil {
		return "", NewHTTPError("building proxy request", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", NewHTTPError("proxy get metadata", err)
	}
	defer resp.Body.Close()
	if err := statusError(resp.StatusCode); err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewHTTPError("reading proxy metadata", err)
	}
	return string(body), nil
}

// SetContent writes a blob from a byte stream.
func (s *ProxyStore) SetContent(ctx context.Context, blobPath string, content io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(blobPath, false), content)
	if err != nil {
		return NewHTTPError("building proxy request", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return NewHTTPError("proxy set content", err)
	}
	resp.Body.Close()
	return statusError(resp.StatusCode)
}

// SetMetadata stores a metadata string alongside the blob.
func (s *ProxyStore) SetMetadata(ctx context.Context, blobPath, metadata string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(blobPath, true), strings.NewReader(metadata))
	if err != nil {
		return NewHTTPError("building proxy request", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return NewHTTPError("proxy set metadata", err)
	}
	resp.Body.Close()
	return statusError(resp.StatusCode)
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrAuthentication
	}
	return NewHTTPError(fmt.Sprintf("proxy returned status %d", code), nil)
}
