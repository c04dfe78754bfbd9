package encoder

import (
	"context"
	"fmt"
	"net/url"
	"os"
	gopath "path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vod-egress/internal/storage"
)

// ObjectUploader delivers artifacts to the object-store destination encoded
// in the job's output URL. The URL locates the bucket and key prefix; the
// worker authenticates with its own short-lived credentials from the
// environment rather than reusing the signature, which only covers a single
// object.
type ObjectUploader struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectUploader parses the destination out of a signed storage URL
// (scheme://endpoint/bucket/key...) and builds the client.
func NewObjectUploader(output *url.URL, accessKey, secretKey string) (*ObjectUploader, error) {
	parts := strings.SplitN(strings.Trim(output.Path, "/"), "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("output url %q carries no bucket", output)
	}
	bucket := parts[0]

	var prefix string
	if len(parts) == 2 {
		prefix = parts[1]
		// The key component may be a segment filename pattern; uploads go
		// next to it.
		if strings.Contains(gopath.Base(prefix), "%") || gopath.Ext(prefix) != "" {
			prefix = gopath.Dir(prefix)
		}
		if prefix == "." {
			prefix = ""
		}
	}

	client, err := minio.New(output.Host, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       output.Scheme == "https",
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}

	return &ObjectUploader{client: client, bucket: bucket, prefix: prefix}, nil
}

// Upload streams one local artifact (a regular file or a named pipe being
// filled by the packager) into the destination bucket.
func (u *ObjectUploader) Upload(ctx context.Context, path string) error {
	// Opening a pipe blocks until the packager opens the write end, which
	// is exactly the hand-off we want.
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	object := gopath.Join(u.prefix, filepath.Base(path))
	opts := minio.PutObjectOptions{ContentType: storage.ContentTypeByPath(path)}
	if _, err := u.client.PutObject(ctx, u.bucket, object, file, -1, opts); err != nil {
		return fmt.Errorf("uploading %s: %w", object, err)
	}
	return nil
}
