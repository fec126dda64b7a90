// Package errors provides GASP's error taxonomy.
//
// It re-exports the parts of github.com/cockroachdb/errors that the rest of
// the module needs (stack traces, wrapping, structured detail) so callers
// never import cockroachdb/errors directly, following the same
// re-export shape as the wider example pack's own errors packages.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping.
var (
	New    = crdb.New
	Newf   = crdb.Newf
	Wrap   = crdb.Wrap
	Wrapf  = crdb.Wrapf
	Is     = crdb.Is
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// WithDetail attaches a safe, non-PII detail string to an error.
var WithDetail = crdb.WithDetail

// Code identifies a GASP error condition. Codes are grouped by the
// taxonomy in the specification's error handling design: schema
// construction, scanner recovery, stack-machine mismatch, primitive parse
// failure, and resource exhaustion.
type Code string

const (
	// Schema-construction errors. These fail Descriptor construction and
	// are surfaced immediately to the caller of Describe.

	// UnsupportedType indicates a host type has no expressible descriptor.
	UnsupportedType Code = "gasp-unsupported-type"
	// CyclicType indicates recursive descriptor construction exceeded the
	// depth cap without resolving through the descriptor registry.
	CyclicType Code = "gasp-cyclic-type"

	// Scanner recovery errors. Non-fatal; the scanner drops or
	// reinterprets the offending bytes and continues.

	// UnbalancedClose indicates a closing tag had no matching open.
	UnbalancedClose Code = "gasp-unbalanced-close"
	// StrayLessThan indicates an isolated '<' did not form a valid token.
	StrayLessThan Code = "gasp-stray-lt"
	// MalformedAttribute indicates an attribute could not be parsed.
	MalformedAttribute Code = "gasp-malformed-attribute"

	// Stack-machine schema mismatch errors. Recoverable; the offending
	// value is discarded and parsing continues.

	// UnknownField indicates a tag named a field absent from the record.
	UnknownField Code = "gasp-unknown-field"
	// UnresolvedUnion indicates a union tag matched no alternative.
	UnresolvedUnion Code = "gasp-unresolved-union"
	// MissingDictKey indicates a dict entry had no key attribute.
	MissingDictKey Code = "gasp-missing-dict-key"
	// WrongElementType indicates a container item did not match its
	// declared element type.
	WrongElementType Code = "gasp-wrong-element-type"

	// Primitive parse failure. The slot is set to its zero value.

	// PrimitiveParseFailure indicates a primitive's text could not be
	// parsed as its declared kind.
	PrimitiveParseFailure Code = "gasp-primitive-parse-failure"

	// Resource exhaustion. Fatal: the parser transitions to a permanent
	// failed state.

	// BufferedTextExceeded indicates the accumulated primitive-text
	// budget was exceeded.
	BufferedTextExceeded Code = "gasp-buffered-text-exceeded"

	// RootNeverOpened is returned by Validate when the root tag has not
	// been opened, and also when it was opened but has not yet closed.
	RootNeverOpened Code = "gasp-root-never-opened"

	// RequiredFieldMissing is recorded (not returned) by Validate when a
	// structurally complete value is missing a required field.
	RequiredFieldMissing Code = "gasp-required-field-missing"
)

// NewCode wraps msg with code as a fresh error carrying a stack trace.
func NewCode(code Code, msg string) error {
	return WithDetail(crdb.New(msg), string(code))
}

// NewCodef is NewCode with formatting.
func NewCodef(code Code, format string, args ...any) error {
	return WithDetail(crdb.Newf(format, args...), string(code))
}

// RecordedError is a non-fatal error observed during parsing. Recorded
// errors never abort Feed; they accumulate on the Parser and are readable
// through its Errors accessor.
type RecordedError struct {
	Code Code
	Path string // tag or field name where the condition was observed; empty for scanner conditions
	Err  error
}

func (e RecordedError) Error() string {
	if e.Path == "" {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code) + " at " + e.Path + ": " + e.Err.Error()
}

func (e RecordedError) Unwrap() error { return e.Err }

// Record builds a RecordedError.
func Record(code Code, path string, err error) RecordedError {
	return RecordedError{Code: code, Path: path, Err: err}
}
