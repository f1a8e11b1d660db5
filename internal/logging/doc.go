// Package logging assembles structured slog loggers and formatting helpers used
// across sitephoto commands.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline passes can tag log lines with
// the run ID and photo folder. The package also provides a no-op logger for
// tests and for the pure reasoning packages, which accept an optional logger.
//
// Prefer these constructors over hand-rolled slog setup so every command emits
// records with the same shape.
package logging
