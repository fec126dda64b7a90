// Package gasp implements a streaming, tag-directed parser that extracts
// typed structured values from incrementally-arriving LLM text: an XML-like
// tagged region carries the payload, surrounding prose is ignored, and the
// result materializes progressively as bytes arrive.
//
// A Parser is built from a Go type via reflection (see the descriptor
// subpackage) and driven with repeated calls to Feed. GetPartial returns
// the current best-effort value at any point; Validate returns the final
// value once the root tag has closed.
package gasp
