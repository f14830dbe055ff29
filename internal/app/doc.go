// Package app wires the configuration, the estimation client, the session
// orchestrator and the chosen surface (one-shot CLI or dashboard) into a
// runnable application.
package app
