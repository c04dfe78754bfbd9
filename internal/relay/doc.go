// Package relay bridges bytes arriving on an inbound HTTP request into an
// outbound response stream without a storage round-trip. Each live sink is
// registered under a generated opaque handle; the remote encoder job only
// ever sees the relay's network address and that handle, never a process
// resource like a file descriptor.
package relay
