package encoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"vod-egress/internal/logging"
)

const (
	videoMovflags = "cmaf+delay_moov+skip_trailer+skip_sidx+frag_keyframe"
	audioMovflags = "cmaf+delay_moov+skip_trailer+skip_sidx"
)

// Encoder is the codec stage: one ffmpeg invocation producing every
// rendition of the preset, each written into its stream's input pipe.
type Encoder struct {
	Preset Preset

	// Start is the clip offset in seconds.
	Start int
	// Duration is the clip length in seconds; 0 encodes to the end.
	Duration int
}

// NewEncoder creates the codec stage for a preset.
func NewEncoder(preset Preset) *Encoder {
	return &Encoder{Preset: preset}
}

// Run invokes the codec process and waits for its completion signal,
// propagating the exit status. Video outputs carry no audio track and vice
// versa.
func (e *Encoder) Run(ctx context.Context, input string, streams []Stream) error {
	if len(streams) < len(e.Preset.Videos)+len(e.Preset.Audios) {
		return fmt.Errorf("encoder: %d streams for %d renditions", len(streams), len(e.Preset.Videos)+len(e.Preset.Audios))
	}
	args := e.args(input, streams)

	logging.Info("running ffmpeg with %d outputs", len(e.Preset.Videos)+len(e.Preset.Audios))
	logging.Debug("ffmpeg args: %v", args)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	logging.Info("ffmpeg finished")
	return nil
}

// args builds the single-invocation argument vector: one output per
// rendition, video renditions first, each writing into its stream's input
// pipe.
func (e *Encoder) args(input string, streams []Stream) []string {
	args := []string{"-y", "-nostdin"}
	if e.Start > 0 {
		args = append(args, "-ss", strconv.Itoa(e.Start))
	}
	if e.Duration > 0 {
		args = append(args, "-t", strconv.Itoa(e.Duration))
	}
	args = append(args, "-i", input)

	for i, video := range e.Preset.Videos {
		args = append(args,
			"-an",
			"-c:v", e.Preset.VideoCodec,
			"-s", video.Size(),
			"-b:v", strconv.Itoa(video.Bitrate),
			"-r", "30",
			"-g", "60",
			"-movflags", videoMovflags,
			"-f", "mp4",
			streams[i].Input,
		)
	}
	for i, audio := range e.Preset.Audios {
		args = append(args,
			"-vn",
			"-c:a", e.Preset.AudioCodec,
			"-b:a", strconv.Itoa(audio.Bitrate),
			"-ac", strconv.Itoa(audio.Channels),
			"-frag_duration", "2",
			"-movflags", audioMovflags,
			"-f", "mp4",
			streams[len(e.Preset.Videos)+i].Input,
		)
	}
	return args
}
