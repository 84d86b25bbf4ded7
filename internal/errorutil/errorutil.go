package errorutil

import "errors"

// ErrTraceOpen is the only fatal error class in an analysis run: the trace
// could not be opened at all. Every other failure degrades to an
// "unavailable" report field with an assumption note.
var ErrTraceOpen = errors.New("trace cannot be opened")

// ErrNoResults represents situations in which no rows were returned by the trace query engine.
var ErrNoResults = errors.New("no results returned")
