// Package metrics defines the Prometheus collectors exported by the egress
// server. All collectors are registered on the default registry via
// promauto and served by promhttp.
package metrics
