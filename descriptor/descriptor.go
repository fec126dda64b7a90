package descriptor

import "reflect"

// Field is one entry of a Class descriptor's field table, in declaration
// order.
type Field struct {
	Name string
	Type *Descriptor
}

// Descriptor is a language-neutral description of an expected shape: a
// tagged record with the kind, display/tag name, ordered child type
// descriptors, a field table for records, and an opaque origin handle used
// only when materializing a final value.
//
// A Descriptor is immutable after construction and safe to share across
// goroutines and across Parser instances (spec §5).
type Descriptor struct {
	Kind Kind

	// Name is the display/tag name: for Class, the class name; for
	// Union, the GASPAliasName override if the marker type implements
	// AliasNamed, else the marker type's Go type name; for
	// List/Set/Tuple/Dict/Optional it is normally empty (the descriptor
	// is addressed through its parent, not by its own name).
	Name string

	// Args holds ordered child descriptors: element type for
	// List/Set, [key, value] for Dict, positional types for Tuple,
	// alternatives for Union, the single inner type for Optional.
	Args []*Descriptor

	// Variadic marks a Tuple descriptor as a homogeneous variadic tuple:
	// Args holds exactly one element type and every item at every
	// position uses it, with no upper bound on arity. This is GASP's Go
	// rendering of the specification's "sentinel marking a homogeneous
	// variadic tuple" (§3) — a boolean flag rather than a literal
	// sentinel value in Args, since Go lets a descriptor carry typed
	// metadata directly.
	Variadic bool

	// Fields holds the ordered field table. Only meaningful when
	// Kind == KindClass.
	Fields []Field

	// Origin is the reflect.Type this descriptor was built from. It is
	// opaque outside of materialization: the core never branches on it
	// except to construct zero values and to drive the optional
	// materialization hook.
	Origin reflect.Type
}

// IsPrimitive reports whether d describes a scalar leaf value.
func (d *Descriptor) IsPrimitive() bool {
	return d != nil && d.Kind.IsPrimitive()
}

// ElementType returns the descriptor for values held inside a
// List/Set/Optional, or the value (not key) type of a Dict. It returns nil
// for kinds that do not have a single natural element type (Tuple, Union,
// Class).
func (d *Descriptor) ElementType() *Descriptor {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case KindList, KindSet, KindOptional:
		if len(d.Args) > 0 {
			return d.Args[0]
		}
	case KindDict:
		if len(d.Args) > 1 {
			return d.Args[1]
		}
	}
	return nil
}

// KeyType returns the key type of a Dict descriptor, or nil.
func (d *Descriptor) KeyType() *Descriptor {
	if d == nil || d.Kind != KindDict || len(d.Args) == 0 {
		return nil
	}
	return d.Args[0]
}

// LookupField returns the field descriptor named name on a Class
// descriptor, and whether it was found.
func (d *Descriptor) LookupField(name string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TuplePositional returns the descriptor governing position i of a Tuple
// descriptor. For a Variadic tuple every position returns the same
// element type.
func (d *Descriptor) TuplePositional(i int) (*Descriptor, bool) {
	if d == nil || d.Kind != KindTuple || len(d.Args) == 0 {
		return nil, false
	}
	if d.Variadic {
		return d.Args[0], true
	}
	if i < 0 || i >= len(d.Args) {
		return nil, false
	}
	return d.Args[i], true
}

// UnionAlternative returns the alternative descriptor on a Union whose
// Name equals name. Callers pass either a child tag name or the value of
// an explicit type= attribute; both are compared against the alternatives'
// names the same way. It returns nil, false if no alternative matches.
func (d *Descriptor) UnionAlternative(name string) (*Descriptor, bool) {
	if d == nil || d.Kind != KindUnion {
		return nil, false
	}
	for _, alt := range d.Args {
		if alt.Name == name {
			return alt, true
		}
	}
	return nil, false
}
