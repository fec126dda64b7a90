// Package stackmachine implements GASP's type-directed stack machine
// (spec §4.3): it consumes scanner events against a root type descriptor,
// maintaining a stack of frames that together represent the in-progress
// value tree, and materializes a partial snapshot on demand.
package stackmachine

import "github.com/kallsyms/gasp/descriptor"

type frameKind byte

const (
	frameField frameKind = iota
	frameList
	frameSet
	frameTuple
	frameDict
	frameObject
	frameUnion
	frameSkip
)

// frame is one stack entry: an in-progress value and its governing
// descriptor (spec §3, "Stack frame").
type frame struct {
	kind frameKind
	desc *descriptor.Descriptor

	// openName is the tag name that pushed this frame; used to match the
	// corresponding Close and, for object fields reached via the
	// union-alternative shortcut (spec §4.3 item 2's second sentence),
	// differs from targetField.
	openName string
	// targetField overrides openName as the field to commit into on an
	// Object parent, used when a union-typed field's alternative tag
	// appears directly as the object's child without the field-name
	// wrapper.
	targetField string

	// Field: primitive accumulator.
	text          []byte
	atObjectScope bool

	// List/Set/Tuple: growing buffer.
	items    []any
	itemDesc *descriptor.Descriptor // List/Set only; Tuple uses TuplePositional
	index    int                    // Tuple: next positional index

	// Dict.
	entryKeys  []string
	entryVals  []any
	valueDesc  *descriptor.Descriptor
	currentKey string
	haveKey    bool

	// Object.
	fields   map[string]any
	assigned map[string]bool
}

func newRootFrame(d *descriptor.Descriptor) *frame {
	return newFrame(d, "")
}

// newFrame constructs the frame appropriate to d's kind.
func newFrame(d *descriptor.Descriptor, openName string) *frame {
	f := &frame{desc: d, openName: openName}
	switch d.Kind {
	case descriptor.KindString, descriptor.KindInt, descriptor.KindFloat, descriptor.KindBool, descriptor.KindAny:
		f.kind = frameField
	case descriptor.KindList:
		f.kind = frameList
		f.itemDesc = d.ElementType()
	case descriptor.KindSet:
		f.kind = frameSet
		f.itemDesc = d.ElementType()
	case descriptor.KindTuple:
		f.kind = frameTuple
	case descriptor.KindDict:
		f.kind = frameDict
		f.valueDesc = d.ElementType()
	case descriptor.KindClass:
		f.kind = frameObject
		f.fields = make(map[string]any, len(d.Fields))
		f.assigned = make(map[string]bool, len(d.Fields))
		for _, fl := range d.Fields {
			f.fields[fl.Name] = descriptor.ZeroValue(fl.Type)
		}
	case descriptor.KindUnion:
		f.kind = frameUnion
	case descriptor.KindOptional:
		// An Optional frame behaves as its inner type once opened (spec
		// §4.3's Optional rule); we eagerly become the inner kind, and
		// the Optional-ness only matters for "resolves to null if never
		// opened", handled by the parent's zero value / unset tracking.
		return newFrame(d.ElementType(), openName)
	default:
		f.kind = frameSkip
	}
	return f
}

// resolveByTypeAttr looks up a "type" attribute against a descriptor's
// alternatives (Union) or declares it advisory-but-unused otherwise.
func resolveByTypeAttr(d *descriptor.Descriptor, typeAttr string, ok bool) (*descriptor.Descriptor, bool) {
	if !ok || d == nil || d.Kind != descriptor.KindUnion {
		return nil, false
	}
	return d.UnionAlternative(typeAttr)
}
