// Package services defines shared utilities consumed by the backend client,
// the page controls, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers, batch run
//     identifiers, and movie paths for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent CLI exit codes.
//
// Use these helpers when wiring new controls so operational behaviour (error
// handling, observability) stays uniform across commands.
package services
