package descriptor

// ZeroValue returns the default materialization for a declared field that
// has not yet been assigned. Per SPEC_FULL.md's "field-default
// population" supplement (grounded in
// _examples/original_source/gasp/deserializable.py), every declared field
// of a record always appears in a partial snapshot, using one of these
// defaults until real content arrives.
func ZeroValue(d *Descriptor) any {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindAny, KindOptional:
		return nil
	case KindList, KindSet, KindTuple:
		return []any{}
	case KindDict:
		return map[string]any{}
	case KindClass:
		m := make(map[string]any, len(d.Fields))
		for _, f := range d.Fields {
			m[f.Name] = ZeroValue(f.Type)
		}
		return m
	case KindUnion:
		return nil
	default:
		return nil
	}
}
