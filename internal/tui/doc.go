// Package tui implements the interactive terminal dashboard. The operator
// tunes machine parameters and opens a drawing; every change is estimated
// again and the latest report or error is shown next to the parameters.
//
// Orchestrator snapshots reach the bubbletea program through a bridge that
// never blocks the orchestrator: only the newest pending snapshot is
// delivered.
package tui
