package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// SignedURLValidity bounds how long a job can use a signed URL it was
// handed at dispatch time.
const SignedURLValidity = time.Minute

// metadataKey is the user-metadata key carrying the probe JSON.
const metadataKey = "Probe"

// ObjectProvider opens containers directly on an S3-compatible object store.
type ObjectProvider struct {
	client *minio.Client
}

// NewObjectProvider creates a provider backed by the given client.
func NewObjectProvider(client *minio.Client) *ObjectProvider {
	return &ObjectProvider{client: client}
}

// Open returns the BlobStore for container. Returns ErrNotFound when the
// container itself does not exist.
func (p *ObjectProvider) Open(ctx context.Context, container string) (BlobStore, error) {
	ok, err := p.client.BucketExists(ctx, container)
	if err != nil {
		return nil, mapObjectError(err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &ObjectStore{client: p.client, container: container}, nil
}

// SignedURL generates a presigned URL for a single blob, read-only or
// read-write, valid for SignedURLValidity.
func (p *ObjectProvider) SignedURL(ctx context.Context, container, blobPath string, readOnly bool) (*url.URL, error) {
	if readOnly {
		u, err := p.client.PresignedGetObject(ctx, container, blobPath, SignedURLValidity, nil)
		if err != nil {
			return nil, mapObjectError(err)
		}
		return u, nil
	}
	u, err := p.client.PresignedPutObject(ctx, container, blobPath, SignedURLValidity)
	if err != nil {
		return nil, mapObjectError(err)
	}
	return u, nil
}

// ObjectStore implements BlobStore on one object-store bucket.
type ObjectStore struct {
	client    *minio.Client
	container string
}

// Exists reports whether a blob is present at path.
func (s *ObjectStore) Exists(ctx context.Context, blobPath string) bool {
	_, err := s.client.StatObject(ctx, s.container, blobPath, minio.StatObjectOptions{})
	return err == nil
}

// GetContent opens a blob for streaming reads.
func (s *ObjectStore) GetContent(ctx context.Context, blobPath string) (io.ReadCloser, error) {
	// GetObject is lazy; stat first so a missing blob surfaces as
	// ErrNotFound before the caller commits to a response.
	if _, err := s.client.StatObject(ctx, s.container, blobPath, minio.StatObjectOptions{}); err != nil {
		return nil, mapObjectError(err)
	}
	obj, err := s.client.GetObject(ctx, s.container, blobPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectError(err)
	}
	return obj, nil
}

// GetMetadata returns the probe metadata stored with the blob.
func (s *ObjectStore) GetMetadata(ctx context.Context, blobPath string) (string, error) {
	info, err := s.client.StatObject(ctx, s.container, blobPath, minio.StatObjectOptions{})
	if err != nil {
		return "", mapObjectError(err)
	}
	meta, ok := info.UserMetadata[metadataKey]
	if !ok || meta == "" {
		return "", ErrNotFound
	}
	return meta, nil
}

// SetContent writes a blob from a byte stream.
func (s *ObjectStore) SetContent(ctx context.Context, blobPath string, content io.Reader) error {
	opts := minio.PutObjectOptions{ContentType: ContentTypeByPath(blobPath)}
	if _, err := s.client.PutObject(ctx, s.container, blobPath, content, -1, opts); err != nil {
		return mapObjectError(err)
	}
	return nil
}

// SetMetadata replaces the blob's user metadata with the given probe string.
func (s *ObjectStore) SetMetadata(ctx context.Context, blobPath, metadata string) error {
	src := minio.CopySrcOptions{Bucket: s.container, Object: blobPath}
	dst := minio.CopyDestOptions{
		Bucket:          s.container,
		Object:          blobPath,
		ReplaceMetadata: true,
		UserMetadata:    map[string]string{metadataKey: metadata},
	}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return mapObjectError(err)
	}
	return nil
}

// ContentTypeByPath maps media artifact extensions to the content types
// clients expect to see on playback.
func ContentTypeByPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".mpd":
		return "application/dash+xml"
	case ".mp4":
		return "video/mp4"
	}
	return "application/octet-stream"
}

func mapObjectError(err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return ErrNotFound
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return ErrAuthentication
		}
		return NewHTTPError(resp.Code, err)
	}
	return NewHTTPError("object store request failed", err)
}
