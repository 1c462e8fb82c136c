// Package errors provides the structured error type reported by dataflow tasks.
// Every task failure carries a machine-readable code, a category that tells the
// orchestrating runtime who is at fault, and an optional numeric code kept
// stable for operators grepping task logs.
package errors
