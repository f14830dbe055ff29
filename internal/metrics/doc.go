// Package metrics exposes the client's Prometheus instruments.
//
// Each Metrics value owns its own registry, so tests and multiple sessions do
// not share counters. All methods are safe to call on a nil *Metrics, which
// lets callers treat instrumentation as optional.
package metrics
