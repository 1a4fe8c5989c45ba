// Package logging builds slog loggers for taskdeck.
//
// Standard output is reserved for launcher feed JSON, so loggers write to
// stderr and optionally to a log file. Helpers mirror the slog attribute
// constructors so call sites stay terse.
package logging
