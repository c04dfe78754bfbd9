package encoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"vod-egress/internal/logging"
)

// EncryptionOptions are content protection parameters passed through to
// the packaging process untouched.
type EncryptionOptions struct {
	KeyID     string
	Key       string
	HLSKeyURI string
}

// Packager is the segmenting stage: one packager invocation reading each
// rendition's elementary stream from the encoder's pipes and producing
// fragmented, playlist-ready output plus the two top-level manifests.
type Packager struct {
	Command    string
	Encryption *EncryptionOptions
}

// NewPackager creates the packaging stage with the default command.
func NewPackager() *Packager {
	return &Packager{Command: "packager"}
}

// Run invokes the packaging process and propagates its exit status.
func (p *Packager) Run(ctx context.Context, set *StreamSet) error {
	args := p.args(set)

	logging.Info("running %s with %d streams", p.Command, len(set.Streams))
	logging.Debug("packager args: %v", args)

	cmd := exec.CommandContext(ctx, p.Command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("packager: %w", err)
	}
	logging.Info("packager finished")
	return nil
}

// args builds the argument vector: one stream descriptor per rendition,
// the encryption passthrough when configured, and both top-level manifest
// outputs.
func (p *Packager) args(set *StreamSet) []string {
	var args []string
	for _, stream := range set.Streams {
		args = append(args, fmt.Sprintf(
			"stream=%s,in=%s,format=mp4,out=%s,playlist_name=%s",
			stream.Type, stream.Input, stream.Output, stream.Playlist,
		))
	}

	if enc := p.Encryption; enc != nil {
		args = append(args,
			"--enable_raw_key_encryption",
			"--protection_scheme", "cbcs",
			"--keys", fmt.Sprintf("label=cenc:key_id=%s:key=%s", enc.KeyID, enc.Key),
			"--clear_lead", "0",
		)
		if enc.HLSKeyURI != "" {
			args = append(args, "--hls_key_uri", enc.HLSKeyURI)
		}
	}

	args = append(args,
		"--mpd_output", set.MPDManifest,
		"--hls_master_playlist_output", set.HLSManifest,
	)
	return args
}
