// Package moveaction implements the per-row move control.
//
// A control moves one movie into one genre folder. It is idle until asked to
// move, loading while the request is in flight, and retry after a failure.
// Success removes the row from the table; the control then reports Done.
package moveaction
