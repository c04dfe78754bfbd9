// Package storage defines the blob storage capability consumed by the
// egress server and implements it twice: directly against an S3-compatible
// object store, and against a remote storage-hosting node over HTTP.
package storage
