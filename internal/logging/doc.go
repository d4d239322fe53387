// Package logging builds the slog loggers used by the movieorg CLI.
//
// Two output formats are supported: a compact console format aimed at
// terminals ("2026-01-02T15:04:05Z INFO moveaction: movie moved path=...")
// and a JSON format for machine consumption. Helpers in this package provide
// the standard attribute keys so every component logs paths, genres, and
// correlation identifiers under the same names.
package logging
