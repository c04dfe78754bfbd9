//go:build unix

package encoder

import (
	"fmt"
	"syscall"

	"vod-egress/internal/logging"
)

// CreatePipes replaces the hand-off files with named pipes so the codec,
// packager and uploader stages stream into each other instead of touching
// disk. Output pipes are skipped when the packaged artifacts must land as
// regular files.
func (s *StreamSet) CreatePipes(outputPipes bool) error {
	logging.Info("creating named pipes")
	for _, stream := range s.Streams {
		if err := syscall.Mkfifo(stream.Input, 0o644); err != nil {
			return fmt.Errorf("creating pipe %s: %w", stream.Input, err)
		}
		if outputPipes {
			if err := syscall.Mkfifo(stream.Output, 0o644); err != nil {
				return fmt.Errorf("creating pipe %s: %w", stream.Output, err)
			}
		}
	}
	return nil
}
