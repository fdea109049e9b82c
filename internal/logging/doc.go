// Package logging builds the slog loggers used across the daemon and CLI.
//
// It provides a console handler for interactive use, a JSON handler for
// machine consumption, attribute helpers, and context-derived fields so every
// log line carries the job and correlation identifiers of the work it
// describes. Format defaults to console on a terminal and JSON otherwise.
package logging
