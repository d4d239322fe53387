// Package session owns one loaded movies page: its table, the move controls
// shown on it, the suggestion cells and the pending-move records that let a
// later invocation see the same controls.
package session
