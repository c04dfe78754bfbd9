package encoder

import (
	"context"

	"golang.org/x/sync/errgroup"

	"vod-egress/internal/logging"
)

// Uploader delivers one local artifact to durable storage.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// UploadMedia fans out one upload per rendition's packaged output, running
// them concurrently and draining a completion channel so each result is
// observed as soon as it lands, earliest first. Every upload is awaited;
// the first error observed is returned.
func UploadMedia(ctx context.Context, uploader Uploader, set *StreamSet) error {
	type result struct {
		path string
		err  error
	}

	results := make(chan result, len(set.Streams))
	for _, stream := range set.Streams {
		stream := stream
		go func() {
			results <- result{stream.Output, uploader.Upload(ctx, stream.Output)}
		}()
	}

	var first error
	for range set.Streams {
		res := <-results
		logging.Info("upload finished for %s (err=%v)", res.path, res.err)
		if res.err != nil && first == nil {
			first = res.err
		}
	}
	return first
}

// UploadManifests uploads the per-rendition playlists and both top-level
// manifests as a plain concurrent batch; nothing downstream depends on
// their completion order.
func UploadManifests(ctx context.Context, uploader Uploader, set *StreamSet) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, stream := range set.Streams {
		path := stream.Playlist
		g.Go(func() error { return uploader.Upload(ctx, path) })
	}
	for _, path := range []string{set.MPDManifest, set.HLSManifest} {
		path := path
		g.Go(func() error { return uploader.Upload(ctx, path) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logging.Info("manifest upload finished")
	return nil
}
