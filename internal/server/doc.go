// Package server exposes a small local status endpoint next to the client:
// Prometheus metrics, a liveness probe and a read-only JSON view of the
// current estimation session.
package server
