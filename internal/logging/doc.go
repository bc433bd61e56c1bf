// Package logging assembles structured slog loggers for buildmsa.
//
// It owns the console and JSON handlers, tees every record into the
// per-output-directory buildmsa.log, and exposes context-aware helpers so
// pipeline code tags log lines with the stage and run identifiers.
package logging
