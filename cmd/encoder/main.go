package main

import (
	"context"
	"flag"
	"io"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"vod-egress/internal/encoder"
	"vod-egress/internal/logging"
)

type outputMode int

const (
	modeLocal outputMode = iota
	modeStorage
	modeRelay
)

func main() {
	input := flag.String("i", "", "input video URL or path")
	output := flag.String("o", "", "output destination: signed storage URL, relay URL or directory")
	start := flag.Int("t", 0, "clip start offset in seconds")
	duration := flag.Int("d", 0, "clip length in seconds (0 = encode to end)")
	size := flag.String("s", "", "target resolution WxH (single-rendition jobs)")
	bitrate := flag.Int("b", 0, "target bitrate in bits/s (single-rendition jobs)")
	gpu := flag.Bool("g", false, "use the hardware encoder")
	flag.Parse()

	if *input == "" || *output == "" {
		logging.Fatal("-i and -o are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	preset, err := buildPreset(ctx, *input, *size, *bitrate, *duration)
	if err != nil {
		logging.Fatal("building preset: %v", err)
	}
	if *gpu {
		preset.UseGPU()
	}

	mode, destURL := classifyOutput(*output)

	dir := *output
	if mode != modeLocal {
		dir, err = os.MkdirTemp("", "encoder")
		if err != nil {
			logging.Fatal("creating temp directory: %v", err)
		}
		defer os.RemoveAll(dir)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Fatal("creating output directory: %v", err)
	}
	logging.Info("working directory is %s", dir)

	set := encoder.NewStreamSet(preset, dir)
	outputPipes := runtime.GOOS != "windows" && mode != modeLocal
	if err := set.CreatePipes(outputPipes); err != nil {
		logging.Fatal("creating pipes: %v", err)
	}

	enc := encoder.NewEncoder(preset)
	enc.Start = *start
	enc.Duration = *duration

	pkg := encoder.NewPackager()
	if keyID := os.Getenv("ENCRYPTION_KEY_ID"); keyID != "" {
		pkg.Encryption = &encoder.EncryptionOptions{
			KeyID:     keyID,
			Key:       os.Getenv("ENCRYPTION_KEY"),
			HLSKeyURI: os.Getenv("ENCRYPTION_HLS_KEY_URI"),
		}
	}

	stages := []encoder.Stage{
		func(ctx context.Context) error { return enc.Run(ctx, *input, set.Streams) },
		func(ctx context.Context) error { return pkg.Run(ctx, set) },
	}

	var uploader *encoder.ObjectUploader
	switch mode {
	case modeStorage:
		uploader, err = encoder.NewObjectUploader(destURL,
			os.Getenv("STORAGE_ACCESS_KEY"), os.Getenv("STORAGE_SECRET_KEY"))
		if err != nil {
			logging.Fatal("building uploader: %v", err)
		}
		if outputPipes {
			stages = append(stages, func(ctx context.Context) error {
				return encoder.UploadMedia(ctx, uploader, set)
			})
		}
	case modeRelay:
		// The primary rendition streams to the relay; the remaining
		// output pipes must still be drained or the packager stalls.
		client := encoder.NewRelayClient(*output)
		stages = append(stages, func(ctx context.Context) error {
			return client.SendFile(ctx, set.Streams[0].Output)
		})
		for _, stream := range set.Streams[1:] {
			path := stream.Output
			stages = append(stages, drainStage(path))
		}
	}

	if err := encoder.Run(ctx, stages...); err != nil {
		logging.Fatal("transcode failed: %v", err)
	}

	if mode == modeRelay && os.Getenv("STORAGE_ENDPOINT") != "" {
		// Manifests still go to durable storage for caching, keyed off
		// the input's location.
		if in, err := url.Parse(*input); err == nil && in.Host != "" {
			uploader, err = encoder.NewObjectUploader(in,
				os.Getenv("STORAGE_ACCESS_KEY"), os.Getenv("STORAGE_SECRET_KEY"))
			if err != nil {
				logging.Fatal("building manifest uploader: %v", err)
			}
		}
	}
	if uploader != nil {
		if !outputPipes && mode == modeStorage {
			if err := encoder.UploadMedia(ctx, uploader, set); err != nil {
				logging.Fatal("uploading media: %v", err)
			}
		}
		if err := encoder.UploadManifests(ctx, uploader, set); err != nil {
			logging.Fatal("uploading manifests: %v", err)
		}
	}

	logging.Info("job complete")
}

// buildPreset picks the rendition table: a single rendition when the
// dispatcher asked for one exact segment, the full ladder otherwise.
func buildPreset(ctx context.Context, input, size string, bitrate, duration int) (encoder.Preset, error) {
	if duration > 0 && size != "" {
		return encoder.SegmentPreset(size, bitrate)
	}
	info, _, err := encoder.Probe(ctx, input)
	if err != nil {
		logging.Warn("probe failed, using default preset: %v", err)
		return encoder.DefaultPreset(), nil
	}
	return encoder.AdaptivePreset(info), nil
}

func classifyOutput(output string) (outputMode, *url.URL) {
	u, err := url.Parse(output)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return modeLocal, nil
	}
	if strings.Contains(u.Path, "/pipe/") {
		return modeRelay, u
	}
	return modeStorage, u
}

// drainStage consumes an undelivered output pipe so the packager never
// blocks on it.
func drainStage(path string) encoder.Stage {
	return func(ctx context.Context) error {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(io.Discard, file)
		return err
	}
}
