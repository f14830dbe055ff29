// Package ui provides theme and color support for the application's user interface.
// It defines color schemes, including one color per report layer, shared by
// the CLI table and the TUI dashboard.
package ui
