package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"vod-egress/internal/logging"
	"vod-egress/internal/manifest"
)

// Rendition is one video output of the codec stage.
type Rendition struct {
	Width   int
	Height  int
	Bitrate int
}

// Size returns the WxH string ffmpeg expects.
func (r Rendition) Size() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// AudioRendition is one audio output of the codec stage.
type AudioRendition struct {
	Bitrate  int
	Channels int
}

// Preset describes every output the codec stage produces for one job.
type Preset struct {
	VideoCodec string
	AudioCodec string
	Videos     []Rendition
	Audios     []AudioRendition
}

// DefaultPreset mirrors the fixed variant ladder: one video rendition per
// rung plus a single stereo audio track.
func DefaultPreset() Preset {
	videos := make([]Rendition, len(manifest.Ladder))
	for i, v := range manifest.Ladder {
		videos[i] = Rendition{Width: v.Width, Height: v.Height, Bitrate: v.Bandwidth}
	}
	return Preset{
		VideoCodec: "libx264",
		AudioCodec: "aac",
		Videos:     videos,
		Audios:     []AudioRendition{{Bitrate: 64000, Channels: 2}},
	}
}

// SegmentPreset builds a single-rendition preset from the job arguments of
// a per-segment transcode (-s WxH, -b bitrate).
func SegmentPreset(size string, bitrate int) (Preset, error) {
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return Preset{}, fmt.Errorf("malformed size %q", size)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Preset{}, fmt.Errorf("parsing width from %q: %w", size, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Preset{}, fmt.Errorf("parsing height from %q: %w", size, err)
	}
	return Preset{
		VideoCodec: "libx264",
		AudioCodec: "aac",
		Videos:     []Rendition{{Width: width, Height: height, Bitrate: bitrate}},
		Audios:     []AudioRendition{{Bitrate: 64000, Channels: 2}},
	}, nil
}

// UseGPU switches the video codec to the hardware encoder.
func (p *Preset) UseGPU() {
	p.VideoCodec = "h264_nvenc"
}

// ProbeInfo is the subset of ffprobe output the pipeline consumes.
type ProbeInfo struct {
	Format struct {
		Duration float64 `json:"duration,string"`
	} `json:"format"`
}

// Probe runs ffprobe on the input and returns its format information. The
// raw JSON is also returned so it can be stored as duration metadata.
func Probe(ctx context.Context, input string) (*ProbeInfo, string, error) {
	logging.Info("running ffprobe on %s", input)
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		input,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, "", fmt.Errorf("ffprobe: %w - %s", err, stderr.String())
	}

	info := &ProbeInfo{}
	if err := json.Unmarshal(stdout.Bytes(), info); err != nil {
		return nil, "", fmt.Errorf("parsing ffprobe output: %w", err)
	}
	return info, stdout.String(), nil
}

// AdaptivePreset picks the preset for a full encode of the probed input.
// The ladder is fixed process-wide, so the probe only informs logging for
// now.
func AdaptivePreset(info *ProbeInfo) Preset {
	if info != nil {
		logging.Debug("probed input duration %.2fs", info.Format.Duration)
	}
	return DefaultPreset()
}
