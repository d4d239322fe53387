// Package queue persists the client-side state of the organizer page in
// SQLite.
//
// Two kinds of state live here. Pending moves are the move controls a user
// has accepted (from a suggestion or a genre selection) but not yet applied;
// they survive between CLI invocations so `movieorg apply` sees the same
// controls the page showed, and once applied they remain as move history.
// Preferences are a flat key/value table; the table sort state is stored
// under the "tableSortState" key.
//
// Schema changes bump the version in schema.go; users delete the state
// database to adopt the new schema.
package queue
