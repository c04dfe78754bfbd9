// Package startup loads configuration from the environment and logs the
// server's startup sequence.
package startup
