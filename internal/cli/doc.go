// Package cli implements the one-shot command-line surface: it selects a
// drawing, waits for the estimate and prints it as a colored breakdown, a
// single line or JSON. It also generates shell completion scripts.
package cli
