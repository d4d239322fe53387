// Package config loads, normalizes, and validates movieorg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays MOVIEORG_* environment variables
// such as MOVIEORG_BACKEND_URL. The Config type centralizes every knob the CLI
// needs: where the organizer backend lives, which movie folders and genres the
// user works with, and where client state and logs are kept.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a trimmed backend URL, and clear validation errors.
package config
