package stackmachine

import (
	"github.com/kallsyms/gasp/descriptor"
	gerrors "github.com/kallsyms/gasp/errors"
)

// Partial returns the current best-effort value tree (spec §4.3's partial
// snapshot, surfaced through the host API's get_partial). It returns nil
// if the root tag has not yet been opened.
func (m *Machine) Partial() any {
	if !m.opened {
		return nil
	}
	return renderFrame(m.stack, 0, m.mat)
}

// renderFrame walks the live stack from index i down, combining each
// frame's already-committed children with the single actively-open
// descendant (if any) at the next stack slot — the descendant is not yet
// reflected in its parent's items/fields because it has not closed.
func renderFrame(stack []*frame, i int, mat Materializer) any {
	f := stack[i]
	openChild := i+1 < len(stack)

	switch f.kind {
	case frameField:
		return currentPrimitiveValue(f)
	case frameObject:
		out := make(map[string]any, len(f.fields))
		for k, v := range f.fields {
			out[k] = v
		}
		if openChild {
			child := stack[i+1]
			name := child.targetField
			if name == "" {
				name = child.openName
			}
			out[name] = renderFrame(stack, i+1, mat)
		}
		if mat != nil {
			return mat(f.desc, out)
		}
		return out
	case frameList, frameSet, frameTuple:
		out := make([]any, 0, len(f.items)+1)
		out = append(out, f.items...)
		if openChild {
			out = append(out, renderFrame(stack, i+1, mat))
		}
		return out
	case frameDict:
		out := make(map[string]any, len(f.entryKeys)+1)
		for idx, k := range f.entryKeys {
			out[k] = f.entryVals[idx]
		}
		if openChild && f.haveKey {
			out[f.currentKey] = renderFrame(stack, i+1, mat)
		}
		return out
	case frameUnion:
		if openChild {
			return renderFrame(stack, i+1, mat)
		}
		if len(f.items) > 0 {
			return f.items[0]
		}
		return nil
	case frameSkip:
		if openChild {
			return renderFrame(stack, i+1, mat)
		}
		return nil
	default:
		return nil
	}
}

// Validate returns the final value once parsing is complete, performing a
// shallow required-field check on the root record (spec §6: validate "may
// raise a summary failure when required fields are missing"). A field
// declared without Optional kind and never assigned is reported; nested
// records are not re-walked since their own frames have already collapsed
// into plain values by the time the root closes.
func (m *Machine) Validate() (any, error) {
	if !m.opened {
		return nil, gerrors.NewCode(gerrors.RootNeverOpened, "root tag was never opened")
	}
	if !m.rootClosed {
		return nil, gerrors.NewCode(gerrors.RootNeverOpened, "root tag was never closed")
	}
	root := m.stack[0]
	if root.kind == frameObject {
		for _, fl := range root.desc.Fields {
			if fl.Type != nil && fl.Type.Kind == descriptor.KindOptional {
				continue
			}
			if !root.assigned[fl.Name] {
				m.record(gerrors.RequiredFieldMissing, fl.Name, nil)
			}
		}
	}
	val, _ := m.finalize(root)
	if root.kind == frameField && len(root.items) == 1 {
		val = root.items[0]
	}
	return val, nil
}
