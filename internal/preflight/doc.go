// Package preflight provides readiness checks for the organizer backend and
// the local paths movieorg depends on.
//
// The CLI "movieorg status" command runs RunAll and renders one line per
// check. Checks for disabled features (file logging, notifications) are
// skipped.
package preflight
