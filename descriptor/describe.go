package descriptor

import (
	"reflect"
	"strings"

	gerrors "github.com/kallsyms/gasp/errors"
)

// maxCyclicDepth bounds descriptor construction recursion depth (spec
// §4.1: "CyclicType if recursion depth exceeds 64"). Direct and mutual
// recursion through repeated types is instead broken by the registry
// below, which memoizes a descriptor per reflect.Type before recursing
// into it; this cap only fires for pathologically deep chains of
// distinct wrapper types.
const maxCyclicDepth = 64

var (
	unionTypeIface = reflect.TypeOf((*UnionType)(nil)).Elem()
)

// registry resolves cyclic/self-referential types by lazy indirection: a
// placeholder *Descriptor is registered for a type before its fields are
// built, so a field that refers back to the same (or a mutually
// recursive) type receives the same pointer instead of recursing forever.
type registry struct {
	byType map[reflect.Type]*Descriptor
}

func newRegistry() *registry {
	return &registry{byType: make(map[reflect.Type]*Descriptor)}
}

// Describe builds a Descriptor from a Go type handle. This is GASP's
// rendering of spec §4.1's `describe(type_handle) → Descriptor`, with
// type_handle = reflect.Type (see SPEC_FULL.md, "Binding boundary").
func Describe(t reflect.Type) (*Descriptor, error) {
	return newRegistry().describe(t, 0)
}

func (r *registry) describe(t reflect.Type, depth int) (*Descriptor, error) {
	if depth > maxCyclicDepth {
		return nil, gerrors.NewCodef(gerrors.CyclicType,
			"descriptor construction exceeded max depth %d at %s", maxCyclicDepth, t)
	}
	if d, ok := r.byType[t]; ok {
		return d, nil
	}

	switch {
	case isSetType(t):
		return r.describeContainer(t, KindSet, depth)
	case isTupleMarker(t):
		return r.describeVariadicTuple(t, depth)
	case t.Implements(unionTypeIface) || reflect.PointerTo(t).Implements(unionTypeIface):
		return r.describeUnion(t, depth)
	}

	switch t.Kind() {
	case reflect.String:
		return &Descriptor{Kind: KindString, Origin: t}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Descriptor{Kind: KindInt, Origin: t}, nil
	case reflect.Float32, reflect.Float64:
		return &Descriptor{Kind: KindFloat, Origin: t}, nil
	case reflect.Bool:
		return &Descriptor{Kind: KindBool, Origin: t}, nil
	case reflect.Interface:
		return &Descriptor{Kind: KindAny, Origin: t}, nil
	case reflect.Ptr:
		inner, err := r.describe(t.Elem(), depth+1)
		if err != nil {
			return nil, err
		}
		return &Descriptor{Kind: KindOptional, Args: []*Descriptor{inner}, Origin: t}, nil
	case reflect.Slice:
		return r.describeContainer(t, KindList, depth)
	case reflect.Array:
		return r.describeFixedTuple(t, depth)
	case reflect.Map:
		return r.describeDict(t, depth)
	case reflect.Struct:
		return r.describeClass(t, depth)
	default:
		return nil, gerrors.NewCodef(gerrors.UnsupportedType,
			"type %s (kind %s) has no expressible descriptor", t, t.Kind())
	}
}

func (r *registry) describeContainer(t reflect.Type, kind Kind, depth int) (*Descriptor, error) {
	elem, err := r.describe(t.Elem(), depth+1)
	if err != nil {
		return nil, err
	}
	return &Descriptor{Kind: kind, Args: []*Descriptor{elem}, Origin: t}, nil
}

func (r *registry) describeVariadicTuple(t reflect.Type, depth int) (*Descriptor, error) {
	elem, err := r.describe(t.Elem(), depth+1)
	if err != nil {
		return nil, err
	}
	return &Descriptor{Kind: KindTuple, Args: []*Descriptor{elem}, Variadic: true, Origin: t}, nil
}

func (r *registry) describeFixedTuple(t reflect.Type, depth int) (*Descriptor, error) {
	n := t.Len()
	if n == 0 {
		return nil, gerrors.NewCodef(gerrors.UnsupportedType, "tuple type %s must have at least one position", t)
	}
	elem, err := r.describe(t.Elem(), depth+1)
	if err != nil {
		return nil, err
	}
	args := make([]*Descriptor, n)
	for i := range args {
		args[i] = elem
	}
	return &Descriptor{Kind: KindTuple, Args: args, Origin: t}, nil
}

func (r *registry) describeDict(t reflect.Type, depth int) (*Descriptor, error) {
	key, err := r.describe(t.Key(), depth+1)
	if err != nil {
		return nil, err
	}
	val, err := r.describe(t.Elem(), depth+1)
	if err != nil {
		return nil, err
	}
	return &Descriptor{Kind: KindDict, Args: []*Descriptor{key, val}, Origin: t}, nil
}

func (r *registry) describeClass(t reflect.Type, depth int) (*Descriptor, error) {
	d := &Descriptor{Kind: KindClass, Name: t.Name(), Origin: t}
	r.byType[t] = d // register before recursing into fields: breaks cycles.

	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type == reflect.TypeOf(UnionMarker{}) {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		ft, err := r.describe(sf.Type, depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: ft})
	}
	d.Fields = fields
	return d, nil
}

func (r *registry) describeUnion(t reflect.Type, depth int) (*Descriptor, error) {
	d := &Descriptor{Kind: KindUnion, Name: t.Name(), Origin: t}
	r.byType[t] = d

	inst := reflect.New(t).Elem().Interface()
	ut, ok := inst.(UnionType)
	if !ok {
		ptr := reflect.New(t).Interface()
		ut, ok = ptr.(UnionType)
		if !ok {
			return nil, gerrors.NewCodef(gerrors.UnsupportedType, "type %s does not implement UnionType", t)
		}
	}
	alts := ut.GASPAlternatives()
	if len(alts) < 2 {
		return nil, gerrors.NewCodef(gerrors.UnsupportedType,
			"union %s must declare at least 2 alternatives, got %d", t, len(alts))
	}

	// Optional-shaped union collapse (spec §4.1(ii)): exactly two
	// alternatives where one is the designated null alternative describes
	// as Optional[other], not as a two-way Union. The registry entry is
	// re-pointed at the Optional descriptor before the other alternative
	// is described, so a cyclic reference back to t resolves to the same
	// Optional shape rather than the discarded Union placeholder.
	if collapsed, ok := r.collapseOptionalUnion(t, alts, depth); ok {
		return collapsed, nil
	}

	if named, ok := inst.(AliasNamed); ok {
		d.Name = named.GASPAliasName()
	}

	args := make([]*Descriptor, 0, len(alts))
	for _, alt := range alts {
		ad, err := r.describe(alt, depth+1)
		if err != nil {
			return nil, err
		}
		if !ad.IsPrimitive() && ad.Kind != KindClass {
			return nil, gerrors.NewCodef(gerrors.UnsupportedType,
				"union alternative %s must be a record or primitive, got %s", alt, ad.Kind)
		}
		args = append(args, ad)
	}
	d.Args = args
	return d, nil
}

var nullType = reflect.TypeOf(Null{})

// collapseOptionalUnion implements spec §4.1(ii): a union of exactly two
// alternatives, one of which is descriptor.Null, describes as
// Optional[other] instead of a two-alternative Union. The Optional
// descriptor is registered for t before other is described.
func (r *registry) collapseOptionalUnion(t reflect.Type, alts []reflect.Type, depth int) (*Descriptor, bool) {
	if len(alts) != 2 {
		return nil, false
	}
	var other reflect.Type
	switch {
	case alts[0] == nullType && alts[1] != nullType:
		other = alts[1]
	case alts[1] == nullType && alts[0] != nullType:
		other = alts[0]
	default:
		return nil, false
	}
	opt := &Descriptor{Kind: KindOptional, Origin: other}
	r.byType[t] = opt
	inner, err := r.describe(other, depth+1)
	if err != nil {
		return nil, false
	}
	opt.Args = []*Descriptor{inner}
	return opt, true
}

// fieldName resolves a struct field's wire tag name, or reports skip=true
// for a field explicitly excluded with `gasp:"-"`.
func fieldName(sf reflect.StructField) (name string, skip bool) {
	tag, ok := sf.Tag.Lookup("gasp")
	if !ok {
		return sf.Name, false
	}
	tag = strings.Split(tag, ",")[0]
	if tag == "-" {
		return "", true
	}
	if tag == "" {
		return sf.Name, false
	}
	return tag, false
}

func isSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && strings.HasPrefix(t.Name(), "Set[") && t.PkgPath() == setPkgPath
}

func isTupleMarker(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && strings.HasPrefix(t.Name(), "Tuple[") && t.PkgPath() == setPkgPath
}

var setPkgPath = reflect.TypeOf(Set[int]{}).PkgPath()
