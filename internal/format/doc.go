// Package format renders report values for display: layer times, distances,
// areas and wall-clock totals. It is shared by the CLI and the TUI.
package format
