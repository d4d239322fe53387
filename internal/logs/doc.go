// Package logs reads the movieorg log file for the `movieorg logs` command.
//
// Tail returns the last N lines (negative offset) or everything after a byte
// offset, and in follow mode polls until new lines arrive, the wait elapses,
// or the context ends. A missing file is treated as empty so following works
// before the first log line is written.
package logs
