// Package logging provides a simple leveled logging interface shared by
// the egress server and the encoder worker.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-chunk pipe traffic, job specs)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the process
//
// The log level is configured via the LOG_LEVEL environment variable.
package logging
