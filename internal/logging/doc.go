// Package logging builds the slog loggers used throughout romdex.
//
// It offers a console handler that renders compact key=value lines with a
// leading component prefix, a JSON handler for machine consumption, and small
// attribute helpers so call sites stay terse. Components receive loggers via
// WithComponent rather than reaching for a global.
package logging
