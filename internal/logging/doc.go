// Package logging assembles structured slog loggers and formatting helpers
// used across sessionlocator packages.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes component loggers so every line carries the package
// that emitted it. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
