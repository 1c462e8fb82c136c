// Package record defines the values exchanged between a pipeline and its
// destination channels: positional tuples, the typed comparison key used by
// sorted exchanges, and the index-stamped value carrier that lets a
// downstream merge re-associate values with their input slot.
package record
