// Package logging assembles structured slog loggers used across assetvault.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with asset IDs, operation names, and
// request IDs. A no-op logger is provided for tests and wiring code that
// cannot fail, and TeeLogger lets the CLI mirror file logs onto stderr.
package logging
