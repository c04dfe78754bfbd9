package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vod-egress/internal/storage"
)

// Renderer turns the ladder and a video's stored duration into playlist
// text. The default implementation renders HLS; it is injected into the
// handlers so tests can substitute a canned renderer.
type Renderer interface {
	// VariantPlaylist renders the master playlist for a video. The video
	// argument carries the ".m3u8" suffix from the request path.
	VariantPlaylist(ctx context.Context, video string) (string, error)

	// MediaPlaylist renders the rendition playlist for one ladder level.
	MediaPlaylist(ctx context.Context, video string, level int) (string, error)
}

// Server renders playlists from one video container's blob store.
type Server struct {
	store storage.BlobStore
}

// NewServer creates a Renderer over the given store.
func NewServer(store storage.BlobStore) *Server {
	return &Server{store: store}
}

// probeMetadata is the subset of the stored ffprobe JSON we care about.
type probeMetadata struct {
	Format struct {
		Duration float64 `json:"duration,string"`
	} `json:"format"`
}

// VariantPlaylist renders the master playlist: one EXT-X-STREAM-INF entry
// per ladder rung, referencing level{N}.m3u8 under the video's folder.
func (s *Server) VariantPlaylist(ctx context.Context, video string) (string, error) {
	name := strings.TrimSuffix(video, ".m3u8")
	if !s.store.Exists(ctx, name) {
		return "", fmt.Errorf("finding video %s: %w", name, storage.ErrNotFound)
	}

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for i, v := range Ladder {
		fmt.Fprintf(&b,
			"#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,FRAME-RATE=%.3f,CODECS=\"%s\"\n",
			v.Bandwidth, v.Width, v.Height, FrameRate, Codecs)
		fmt.Fprintf(&b, "%s/level%d.m3u8\n", name, i)
	}
	return b.String(), nil
}

// MediaPlaylist renders the rendition playlist for one level. The segment
// count is floor(duration / SegmentDuration), with the duration recovered
// from the video's stored probe metadata.
func (s *Server) MediaPlaylist(ctx context.Context, video string, level int) (string, error) {
	duration, err := s.duration(ctx, video)
	if err != nil {
		return "", err
	}
	segments := int(duration) / SegmentDuration

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", SegmentDuration)
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	for i := 0; i < segments; i++ {
		fmt.Fprintf(&b, "#EXTINF:%d.000,\n", SegmentDuration)
		fmt.Fprintf(&b, "level%d/segment%d.ts\n", level, i)
	}
	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String(), nil
}

func (s *Server) duration(ctx context.Context, video string) (float64, error) {
	meta, err := s.store.GetMetadata(ctx, video)
	if err != nil {
		return 0, fmt.Errorf("reading duration metadata for %s: %w", video, err)
	}
	var probe probeMetadata
	if err := json.Unmarshal([]byte(meta), &probe); err != nil {
		// Some probes store the duration as a bare JSON number.
		var alt struct {
			Format struct {
				Duration float64 `json:"duration"`
			} `json:"format"`
		}
		if err2 := json.Unmarshal([]byte(meta), &alt); err2 != nil {
			return 0, fmt.Errorf("parsing duration metadata for %s: %w", video, err)
		}
		return alt.Format.Duration, nil
	}
	return probe.Format.Duration, nil
}
