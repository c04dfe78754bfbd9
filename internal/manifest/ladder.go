package manifest

import "fmt"

// Variant is one rung of the bitrate ladder. Level 0 is the highest quality.
type Variant struct {
	Width     int
	Height    int
	Bandwidth int
}

// SegmentDuration is the fixed playback segment length in seconds.
const SegmentDuration = 5

// FrameRate is the fixed output frame rate.
const FrameRate = 30.0

// Codecs advertised for every variant: H.264 baseline video + AAC-LC audio.
const Codecs = "avc1.42e00a,mp4a.40.2"

// Ladder is the fixed variant ladder, indexed by level.
var Ladder = []Variant{
	{Width: 1920, Height: 1080, Bandwidth: 2000000},
	{Width: 1200, Height: 720, Bandwidth: 1000000},
	{Width: 848, Height: 480, Bandwidth: 600000},
}

// SegmentPath is the deterministic blob path of one segment, relative to
// its container.
func SegmentPath(video string, level, segment int) string {
	return fmt.Sprintf("%s/level%d/segment%d.ts", video, level, segment)
}

// Resolution returns the WxH string ffmpeg expects for a ladder level.
func (v Variant) Resolution() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}
