// Package dispatch builds deterministic transcode job descriptions and
// submits them to the cluster scheduler. The job name doubles as the
// scheduler's idempotency key: concurrent requests for the same artifact
// collapse onto a single running job.
package dispatch
