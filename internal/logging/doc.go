// Package logging provides the structured logging interface used by lasercalc,
// backed by zerolog. Constructors cover the console output of the one-shot
// mode, JSON files for the dashboard and a discarding logger.
package logging
