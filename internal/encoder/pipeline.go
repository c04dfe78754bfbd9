package encoder

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Stage is one concurrently running phase of a transcode job.
type Stage func(ctx context.Context) error

// Run drives all stages to completion together. The first error cancels
// the shared context, which terminates the external processes and unblocks
// the pipes; every stage is still awaited so nothing is left running, and
// the first error is what surfaces.
func Run(ctx context.Context, stages ...Stage) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, stage := range stages {
		stage := stage
		g.Go(func() error { return stage(ctx) })
	}
	return g.Wait()
}
