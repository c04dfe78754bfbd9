// Package handlers implements the egress HTTP surface: playlist and
// segment delivery, the pipe relay ingest endpoint, health and static
// assets.
//
// Every internal failure - missing blob, rejected credentials, transport
// error, dispatch failure, completion timeout - collapses into a plain 404
// so the interface never leaks backend state. The specific error kind is
// logged before collapsing.
package handlers
