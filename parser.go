package gasp

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/kallsyms/gasp/descriptor"
	gerrors "github.com/kallsyms/gasp/errors"
	"github.com/kallsyms/gasp/internal/scanner"
	"github.com/kallsyms/gasp/internal/stackmachine"
)

// Parser is a single-use, stateful GASP parser instance (spec §5: "each
// parser instance is a sequential state machine owned by exactly one
// caller"). It is not safe for concurrent mutation.
type Parser struct {
	id      uuid.UUID
	desc    *descriptor.Descriptor
	scanner *scanner.Scanner
	machine *stackmachine.Machine
}

// New builds a Parser for the shape of T, discovered via reflection
// (descriptor.Describe binds a Go reflect.Type as the spec's abstract
// "type_handle").
func New[T any](opts Options) (*Parser, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, gerrors.NewCode(gerrors.UnsupportedType, "cannot describe a nil interface type")
	}
	return NewFromType(t, opts)
}

// NewFromType builds a Parser for t directly, for callers that already
// hold a reflect.Type, e.g. a schema chosen dynamically at runtime.
func NewFromType(t reflect.Type, opts Options) (*Parser, error) {
	d, err := descriptor.Describe(t)
	if err != nil {
		return nil, err
	}
	sc := scanner.New(wantedTagNames(d), opts.ignoredTags)
	mach := stackmachine.New(d, opts.resolvedMaxBufferedText(), opts.materializer)
	return &Parser{id: uuid.New(), desc: d, scanner: sc, machine: mach}, nil
}

// wantedTagNames returns every tag name that legitimately opens the root
// region: the root type's own name, or every alternative's name when the
// root itself is a union (spec §4.2's wanted-region rule). A bare
// container or primitive root (List/Set/Tuple/Dict/a scalar kind) has no
// name of its own to wait for; returning an empty slice tells the scanner
// to open the region on the first top-level tag of any name, whatever it
// turns out to be, mirroring how the stack machine's openRoot binds that
// same name onto the root frame regardless of what it is.
func wantedTagNames(d *descriptor.Descriptor) []string {
	if d.Kind == descriptor.KindUnion {
		names := make([]string, 0, len(d.Args))
		for _, alt := range d.Args {
			names = append(names, alt.Name)
		}
		return names
	}
	if d.Name == "" {
		return nil
	}
	return []string{d.Name}
}

// ID returns the parser's per-instance identifier, useful for correlating
// diagnostics across concurrently-running parsers sharing one process.
func (p *Parser) ID() uuid.UUID { return p.id }

// Feed pushes chunk into the parser and returns the current root partial,
// or nil if the root tag has not yet been opened (spec §6's feed).
func (p *Parser) Feed(chunk []byte) (any, error) {
	events := p.scanner.Consume(chunk)
	if err := p.machine.Consume(events); err != nil {
		return p.machine.Partial(), err
	}
	return p.machine.Partial(), nil
}

// FeedString is Feed for callers holding a string chunk.
func (p *Parser) FeedString(chunk string) (any, error) {
	return p.Feed([]byte(chunk))
}

// IsComplete reports whether the root's close has been consumed.
func (p *Parser) IsComplete() bool { return p.machine.IsComplete() }

// GetPartial returns the current partial without re-running the scanner.
func (p *Parser) GetPartial() any { return p.machine.Partial() }

// Validate returns the final value, performing the stack machine's
// required-field check (spec §6: "implementations may perform whole-object
// invariant checks here").
func (p *Parser) Validate() (any, error) { return p.machine.Validate() }

// Errors drains and returns every recoverable condition observed by the
// scanner and stack machine since the last call.
func (p *Parser) Errors() []gerrors.RecordedError {
	var all []gerrors.RecordedError
	for _, e := range p.scanner.Errors() {
		code := scannerErrorCode(e.Code)
		all = append(all, gerrors.Record(code, "", gerrors.NewCode(code, e.Code)))
	}
	all = append(all, p.machine.Errors()...)
	return all
}

func scannerErrorCode(code string) gerrors.Code {
	switch code {
	case "unmatched-close":
		return gerrors.UnbalancedClose
	case "stray-lt":
		return gerrors.StrayLessThan
	case "malformed-attribute":
		return gerrors.MalformedAttribute
	default:
		return gerrors.Code(code)
	}
}
