// Package page loads the organizer's movies page and turns its table into
// rows and move controls.
//
// The backend renders one HTML page per movie folder. The table carries the
// folder in data-base-folder and the configured genres as a JSON list in
// data-genres. Each tbody row holds the title, the current genre, a
// suggestion cell and an actions cell that may already contain a move button.
package page
