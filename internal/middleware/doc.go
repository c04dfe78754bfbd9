// Package middleware provides the HTTP middleware chain for the egress
// server: access logging, Prometheus metrics and CORS.
package middleware
