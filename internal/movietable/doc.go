// Package movietable models the movie table shown by the organizer page.
//
// A Table holds the rows of one movie folder in display order and knows how
// to sort them by a column. Sorting compares the trimmed cell text byte-wise;
// sorting the active column again flips the direction, any other column
// starts ascending, and equal cells keep their relative order. The active
// sort state is handed to a StateSaver after every sort so it can be restored
// the next time the table is loaded.
package movietable
