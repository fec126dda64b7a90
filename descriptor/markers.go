package descriptor

import "reflect"

// Set is a named generic marker for an unordered, deduplicated container.
// A host struct field declared as Set[T] is described as Kind Set with a
// single element-type arg, rather than Kind List (Go's reflect package has
// no built-in notion of set-vs-slice, so GASP distinguishes them by this
// defined generic type rather than by plain []T).
type Set[T any] []T

// Tuple is a named generic marker for a homogeneous variadic tuple: every
// item shares type T and there is no upper bound on arity (spec §3/§4.3,
// "homogeneous-tuple rule").
type Tuple[T any] []T

// UnionType is implemented by marker types that stand in for a
// discriminated union in a host struct's field list. GASPAlternatives
// returns the concrete alternative types, in declaration order; each must
// itself describe to Kind Class (a record) or a primitive kind.
//
// A marker type that also implements AliasNamed overrides the descriptor's
// display Name with GASPAliasName; otherwise the marker type's own Name()
// is used. A host binds a union
// field by declaring it with this marker type, e.g.:
//
//	type ResponseType struct{ descriptor.UnionMarker }
//	func (ResponseType) GASPAlternatives() []reflect.Type {
//		return []reflect.Type{reflect.TypeOf(Success{}), reflect.TypeOf(Failure{})}
//	}
type UnionType interface {
	GASPAlternatives() []reflect.Type
}

// AliasNamed is an optional extension of UnionType: implement it to give
// a named-alias union a display name distinct from its Go type name.
// Per spec §9's "union alias preservation", the alias name is used only
// for display/schema purposes — accepted wire input must still tag by
// alternative name, never by the alias.
type AliasNamed interface {
	GASPAliasName() string
}

// UnionMarker is embedded by union marker structs; it exists only so such
// structs have a distinguishing, documented shape (no behavior).
type UnionMarker struct{}

// Null is the designated "null alternative" type: a Union whose two
// alternatives are some record type and Null collapses to Optional[record]
// per spec §4.1(ii). Go callers normally express optionality with a plain
// pointer field instead (see Describe's Ptr handling); this exists for
// completeness. An instance carries no data.
type Null struct{}
