package encoder

import (
	"fmt"
	"path/filepath"
)

// StreamType distinguishes video and audio renditions in the packager's
// stream descriptors.
type StreamType int

const (
	// VideoStream is an elementary video stream.
	VideoStream StreamType = iota
	// AudioStream is an elementary audio stream.
	AudioStream
)

func (t StreamType) String() string {
	if t == AudioStream {
		return "audio"
	}
	return "video"
}

// Stream is the artifact triple for one rendition: the encoded elementary
// stream handed from codec to packager (Input), the packaged fragmented
// output (Output), and its rendition playlist (Playlist).
type Stream struct {
	Type     StreamType
	Input    string
	Output   string
	Playlist string
}

// StreamSet is every intermediate artifact of one transcode job: the
// per-rendition triples (video renditions first, then audio) plus the two
// top-level manifests. Top-level manifests never use pipes.
type StreamSet struct {
	Streams     []Stream
	MPDManifest string
	HLSManifest string
}

// NewStreamSet lays out the artifact paths for a preset under dir.
func NewStreamSet(preset Preset, dir string) *StreamSet {
	streams := make([]Stream, 0, len(preset.Videos)+len(preset.Audios))
	for i := range preset.Videos {
		streams = append(streams, newStream(VideoStream, dir, i, fmt.Sprintf("video_%d", i)))
	}
	for i := range preset.Audios {
		streams = append(streams, newStream(AudioStream, dir, len(preset.Videos)+i, fmt.Sprintf("audio_%d", i)))
	}
	return &StreamSet{
		Streams:     streams,
		MPDManifest: filepath.Join(dir, "manifest.mpd"),
		HLSManifest: filepath.Join(dir, "manifest.m3u8"),
	}
}

func newStream(t StreamType, dir string, index int, name string) Stream {
	return Stream{
		Type:     t,
		Input:    filepath.Join(dir, fmt.Sprintf("_input_%d.mp4", index)),
		Output:   filepath.Join(dir, name+".mp4"),
		Playlist: filepath.Join(dir, name+".m3u8"),
	}
}
