package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"vod-egress/internal/logging"
	"vod-egress/internal/manifest"
	"vod-egress/internal/metrics"
	"vod-egress/internal/relay"
	"vod-egress/internal/startup"
	"vod-egress/internal/storage"
)

// CompletionWait bounds how long a non-streaming dispatch blocks for job
// completion. Timing out is not an error: the caller re-checks storage,
// which fails cleanly if the job never finished.
const CompletionWait = 20 * time.Second

// ErrJobExists is returned by a Scheduler when a job with the same name is
// already present. Callers treat it as success-in-progress, never as a
// failure.
var ErrJobExists = errors.New("dispatch: job already exists")

// Policy selects how job names are derived, and therefore how duplicate
// work is collapsed.
type Policy string

const (
	// PolicyEncodeAhead keys jobs by (video, level); one job produces all
	// segments of a rendition ahead of playback.
	PolicyEncodeAhead Policy = "encode-ahead"
	// PolicyCacheFragments keys jobs by (video, level, segment); the default.
	PolicyCacheFragments Policy = "cache-fragments"
	// PolicyNone generates a fresh name per call and never deduplicates.
	PolicyNone Policy = "none"
)

// JobDescriptor describes one unit of transcode work. Name is the
// scheduler idempotency key.
type JobDescriptor struct {
	Name  string
	Image string
	Args  []string
}

// Scheduler is the cluster workload scheduler the dispatcher submits to.
type Scheduler interface {
	// CreateJob submits a job, returning ErrJobExists when a job with the
	// same name is already registered.
	CreateJob(ctx context.Context, job JobDescriptor) error

	// WaitForJob blocks until the named job completes, fails, or ctx ends.
	WaitForJob(ctx context.Context, name string) error
}

// Error reports a job submission failure for a reason other than
// "already exists".
type Error struct {
	Job string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch: submitting job %s: %v", e.Job, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Dispatcher builds and submits transcode jobs.
type Dispatcher struct {
	scheduler Scheduler
	signer    storage.URLSigner
	relay     *relay.Relay
	cfg       *startup.Config
}

// New creates a Dispatcher. All collaborators are explicit dependencies;
// nothing here is ambient.
func New(scheduler Scheduler, signer storage.URLSigner, pipes *relay.Relay, cfg *startup.Config) *Dispatcher {
	return &Dispatcher{scheduler: scheduler, signer: signer, relay: pipes, cfg: cfg}
}

// Policy returns the active caching policy.
func (d *Dispatcher) Policy() Policy {
	switch {
	case d.cfg.EncodeAhead:
		return PolicyEncodeAhead
	case d.cfg.CacheFragments:
		return PolicyCacheFragments
	}
	return PolicyNone
}

// JobName computes the job's idempotency key under the active policy. For
// the deduplicating policies this is a pure function of its inputs; under
// PolicyNone every call yields a fresh name.
func (d *Dispatcher) JobName(video string, level, segment int) string {
	name := strings.ToLower(strings.ReplaceAll(video, "_", "-"))
	switch d.Policy() {
	case PolicyEncodeAhead:
		return fmt.Sprintf("%s-l%d", name, level)
	case PolicyCacheFragments:
		return fmt.Sprintf("%s-l%d-s%d", name, level, segment)
	}
	return uuid.NewString()
}

// liveStreaming reports whether segment bytes should flow back through the
// pipe relay. Encode-ahead produces many segments from one job and cannot
// be attached to a single live sink, so the two are mutually exclusive.
func (d *Dispatcher) liveStreaming() bool {
	return d.cfg.StreamWhileEncoding && !d.cfg.EncodeAhead
}

// Dispatch submits the transcode job for one segment. When live streaming
// applies it allocates a relay handle before submission and returns the
// paired read end; the caller streams it into the response body. Otherwise
// it blocks (bounded by CompletionWait) for the job to finish and returns a
// nil reader, leaving the caller to re-fetch from storage.
func (d *Dispatcher) Dispatch(ctx context.Context, container, video string, level, segment int) (io.ReadCloser, error) {
	if level < 0 || level >= len(manifest.Ladder) {
		return nil, fmt.Errorf("dispatch: level %d outside ladder", level)
	}

	name := d.JobName(video, level, segment)
	live := d.liveStreaming()

	var handle string
	var stream io.ReadCloser
	if live {
		handle, stream = d.relay.Allocate()
	}

	job, err := d.buildJob(ctx, name, container, video, level, segment, handle)
	if err != nil {
		if live {
			d.relay.Abort(handle, err)
		}
		return nil, err
	}

	logging.Debug("submitting job %s (image %s, args %v)", job.Name, job.Image, job.Args)
	switch err := d.scheduler.CreateJob(ctx, job); {
	case err == nil:
		metrics.JobsDispatched.WithLabelValues(string(d.Policy()), "created").Inc()
		logging.Info("created job %s", job.Name)
	case errors.Is(err, ErrJobExists):
		// Another request is already producing this artifact; proceed
		// exactly as if our submission succeeded.
		metrics.JobsDispatched.WithLabelValues(string(d.Policy()), "exists").Inc()
		logging.Info("job %s already running", job.Name)
	default:
		metrics.JobsDispatched.WithLabelValues(string(d.Policy()), "error").Inc()
		if live {
			d.relay.Abort(handle, err)
		}
		return nil, &Error{Job: job.Name, Err: err}
	}

	if live {
		// The handle must not outlive the request it feeds. A duplicate
		// submission streams to the first request's handle, so this one may
		// never see a byte; release it once the request context ends. The
		// job usually closed the handle already, which Abort reports as
		// ErrUnknownHandle.
		context.AfterFunc(ctx, func() {
			if err := d.relay.Abort(handle, context.Cause(ctx)); err == nil {
				logging.Debug("released relay handle %s after request end", handle)
			}
		})
		return stream, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, CompletionWait)
	defer cancel()
	if err := d.scheduler.WaitForJob(waitCtx, name); err != nil {
		// Stop waiting and let the caller try storage; the job keeps
		// running under the scheduler's own TTL policy.
		logging.Warn("gave up waiting for job %s: %v", name, err)
	}
	return nil, nil
}

// buildJob assembles the job descriptor: signed input URL, output
// destination (relay address or signed write URL), clip window and target
// rendition parameters from the ladder.
func (d *Dispatcher) buildJob(ctx context.Context, name, container, video string, level, segment int, handle string) (JobDescriptor, error) {
	input, err := d.signer.SignedURL(ctx, container, video, true)
	if err != nil {
		return JobDescriptor{}, fmt.Errorf("signing input url for %s/%s: %w", container, video, err)
	}

	args := []string{"-i", input.String(), "-o"}
	if handle != "" {
		args = append(args, fmt.Sprintf("http://%s/pipe/%s", d.cfg.PodAddress, handle))
	} else {
		output, err := d.signer.SignedURL(ctx, container, video, false)
		if err != nil {
			return JobDescriptor{}, fmt.Errorf("signing output url for %s/%s: %w", container, video, err)
		}
		// The pattern locates the destination for the worker, which derives
		// its bucket and key prefix from this URL and uploads artifacts
		// under their own file names.
		args = append(args, fmt.Sprintf("%s/level%d/segment%%d.ts", output, level))
	}

	args = append(args, "-t", strconv.Itoa(segment*manifest.SegmentDuration))
	if !d.cfg.EncodeAhead {
		// Clip length is omitted under encode-ahead, meaning "to end".
		args = append(args, "-d", strconv.Itoa(manifest.SegmentDuration))
	}

	variant := manifest.Ladder[level]
	args = append(args, "-s", variant.Resolution(), "-b", strconv.Itoa(variant.Bandwidth))

	image := d.cfg.ImageName
	if d.cfg.UseGPU {
		image = d.cfg.GPUImageName
		args = append(args, "-g")
	}

	return JobDescriptor{
		Name:  name,
		Image: d.cfg.RegistryName + image,
		Args:  args,
	}, nil
}
