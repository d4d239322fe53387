// Package suggestion drives the suggested-genre cell of each row.
//
// Fetch asks the backend for a genre guess and shows it with a menu of
// choices; Select applies one of those choices. Whenever the resulting genre
// differs from the row's current genre a move control is injected for it.
// Failed fetches show an inline error that reverts to the previous cell
// content after a delay.
package suggestion
