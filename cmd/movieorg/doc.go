// Command movieorg is the terminal client for the movie organizer backend.
//
// It loads a folder's movie table from the backend, sorts it, fetches genre
// suggestions and moves movies into genre folders, one at a time or all
// pending moves at once with apply.
package main
