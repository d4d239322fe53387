// Package batch applies every pending move control of a page, one at a time,
// in table order. Runs are serialized across processes with a file lock.
package batch
