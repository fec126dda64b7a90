package stackmachine

import (
	"reflect"

	"github.com/kallsyms/gasp/descriptor"
	gerrors "github.com/kallsyms/gasp/errors"
	"github.com/kallsyms/gasp/internal/scanner"
)

// DefaultMaxBufferedText is the default cap, in bytes, on the sum of live
// primitive-accumulator bytes across the whole frame stack (spec §7's
// memory budget; 64 MiB per SPEC_FULL.md's Open Question decision).
const DefaultMaxBufferedText = 64 << 20

// Materializer builds a final or partial value for a Class frame from its
// origin descriptor and its field map, implementing the host-provided
// materialization hook (spec §6: "__partial__(cls, field_map) → object").
// When nil, the plain field map is used as the value.
type Materializer func(d *descriptor.Descriptor, fields map[string]any) any

// Machine is the type-directed stack machine (spec §4.3). It consumes
// scanner events against a root descriptor, maintaining the frame stack
// that represents the in-progress value tree.
type Machine struct {
	root *descriptor.Descriptor
	mat  Materializer

	stack  []*frame
	opened bool
	failed bool
	failErr error

	maxBufferedText int
	bufferedText    int

	rootOpened bool
	rootClosed bool
	errs       []gerrors.RecordedError
}

// New builds a Machine rooted at d. maxBufferedText <= 0 uses
// DefaultMaxBufferedText.
func New(d *descriptor.Descriptor, maxBufferedText int, mat Materializer) *Machine {
	if maxBufferedText <= 0 {
		maxBufferedText = DefaultMaxBufferedText
	}
	return &Machine{
		root:            d,
		mat:             mat,
		stack:           []*frame{newRootFrame(d)},
		maxBufferedText: maxBufferedText,
	}
}

// Err returns the machine's fatal error, if any. The only condition that
// sets it is exceeding the buffered-text budget (BufferedTextExceeded); a
// root that never opened is reported by Validate instead.
func (m *Machine) Err() error { return m.failErr }

// Errors drains and returns the non-fatal conditions observed since the
// last call (spec §4.3's tolerant-mismatch paths).
func (m *Machine) Errors() []gerrors.RecordedError {
	e := m.errs
	m.errs = nil
	return e
}

// IsComplete reports whether the root region has been fully closed.
func (m *Machine) IsComplete() bool {
	return m.opened && len(m.stack) == 1 && m.rootClosed
}

func (m *Machine) top() *frame {
	return m.stack[len(m.stack)-1]
}

func (m *Machine) record(code gerrors.Code, path string, err error) {
	if err == nil {
		err = gerrors.NewCode(code, string(code))
	}
	m.errs = append(m.errs, gerrors.Record(code, path, err))
}

func (m *Machine) fail(code gerrors.Code, msg string) {
	if m.failed {
		return
	}
	m.failed = true
	m.failErr = gerrors.NewCode(code, msg)
}

// Consume feeds scanner events into the machine in order. Any event is
// proof the wanted region has opened (the scanner never emits outside one),
// so the first call that carries any event marks the machine opened.
func (m *Machine) Consume(events []scanner.Event) error {
	if len(events) > 0 {
		m.opened = true
	}
	for _, ev := range events {
		if m.failed {
			break
		}
		if !m.rootOpened {
			if ev.Kind == scanner.Open {
				m.openRoot(ev)
				m.rootOpened = true
			}
			continue
		}
		switch ev.Kind {
		case scanner.Open:
			m.handleOpen(ev)
		case scanner.Close:
			m.handleClose(ev)
		case scanner.Text:
			m.handleText(ev)
		}
	}
	return m.failErr
}

// openRoot consumes the event that opens the wanted region itself. Unlike
// every other Open, this one addresses the root frame, not one of its
// children: it just needs to record the tag name so the eventual matching
// Close is recognized. When the root descriptor is itself a Union, the
// scanner's wanted set is the alternatives' own names (see wantedTagNames),
// so this Open directly names the chosen alternative and the root frame is
// replaced with it — there is no wrapper tag to keep a Union frame around
// for, unlike a union nested inside a field.
func (m *Machine) openRoot(ev scanner.Event) {
	root := m.stack[0]
	if root.kind == frameUnion {
		alt, ok := root.desc.UnionAlternative(ev.Name)
		if !ok {
			if typeAttr, hasType := ev.Attr("type"); hasType {
				alt, ok = root.desc.UnionAlternative(typeAttr)
			}
		}
		if !ok {
			m.record(gerrors.UnresolvedUnion, ev.Name, nil)
			m.stack[0] = &frame{kind: frameSkip, openName: ev.Name}
			return
		}
		m.stack[0] = newFrame(alt, ev.Name)
		return
	}
	root.openName = ev.Name
}

func (m *Machine) chargeBudget(n int) bool {
	if m.bufferedText+n > m.maxBufferedText {
		return false
	}
	m.bufferedText += n
	return true
}

func (m *Machine) releaseBudget(n int) {
	m.bufferedText -= n
	if m.bufferedText < 0 {
		m.bufferedText = 0
	}
}

// pushSkip pushes an inert frame for a tag the current context does not
// recognize, so its subtree is consumed and discarded without disturbing
// the real frame stack (spec §4.3's tolerant-mismatch recovery).
func (m *Machine) pushSkip(name string) {
	m.stack = append(m.stack, &frame{kind: frameSkip, openName: name})
}

// pushChildFrame constructs the frame for a newly-opened child, unwrapping
// Optional and eagerly resolving a Union via the event's "type" attribute
// when present (spec §4.3 item 2's union dispatch).
func pushChildFrame(d *descriptor.Descriptor, ev scanner.Event) *frame {
	if d.Kind == descriptor.KindOptional {
		return pushChildFrame(d.ElementType(), ev)
	}
	if d.Kind == descriptor.KindUnion {
		if typeAttr, ok := ev.Attr("type"); ok {
			if alt, ok2 := resolveByTypeAttr(d, typeAttr, ok); ok2 {
				return newFrame(alt, ev.Name)
			}
		}
		return newFrame(d, ev.Name)
	}
	return newFrame(d, ev.Name)
}

func (m *Machine) handleOpen(ev scanner.Event) {
	top := m.top()
	switch top.kind {
	case frameUnion:
		// Nested-tag-name dispatch: <wrapper><Alternative>...</Alternative>
		// </wrapper>, as opposed to the <wrapper type="Alternative"> form
		// already resolved eagerly in pushChildFrame. The union frame stays
		// on the stack (its own close still has to match the wrapper's
		// opening tag) and gains a child frame for the alternative; the
		// child's value is stashed on the union frame when it closes.
		alt, ok := top.desc.UnionAlternative(ev.Name)
		if !ok {
			if typeAttr, hasType := ev.Attr("type"); hasType {
				alt, ok = top.desc.UnionAlternative(typeAttr)
			}
		}
		if !ok {
			m.record(gerrors.UnresolvedUnion, top.openName, nil)
			m.pushSkip(ev.Name)
			return
		}
		m.stack = append(m.stack, newFrame(alt, ev.Name))
	case frameObject:
		m.openInObject(top, ev)
	case frameList, frameSet:
		m.openInSequence(top, ev)
	case frameTuple:
		m.openInTuple(top, ev)
	case frameDict:
		m.openInDict(top, ev)
	default:
		// frameField or frameSkip: a nested tag here carries no declared
		// meaning; consume its subtree transparently.
		m.pushSkip(ev.Name)
	}
}

// lookupObjectChild resolves a child tag name against an Object frame's
// declared fields, including the union-alternative shortcut (spec §4.3
// item 2's second sentence: a union-typed field's alternative tag may
// appear directly, without the field-name wrapper). It returns the
// descriptor to push a frame for, the field name to commit into, and
// whether a match was found.
func lookupObjectChild(d *descriptor.Descriptor, name string) (*descriptor.Descriptor, string, bool) {
	if f, ok := d.LookupField(name); ok {
		return f.Type, name, true
	}
	for _, f := range d.Fields {
		ft := f.Type
		if ft != nil && ft.Kind == descriptor.KindOptional {
			ft = ft.ElementType()
		}
		if ft != nil && ft.Kind == descriptor.KindUnion {
			if alt, ok := ft.UnionAlternative(name); ok {
				return alt, f.Name, true
			}
		}
	}
	return nil, "", false
}

func (m *Machine) openInObject(top *frame, ev scanner.Event) {
	fieldType, target, ok := lookupObjectChild(top.desc, ev.Name)
	if !ok {
		m.record(gerrors.UnknownField, ev.Name, nil)
		m.pushSkip(ev.Name)
		return
	}
	child := pushChildFrame(fieldType, ev)
	child.targetField = target
	if child.kind == frameField {
		child.atObjectScope = true
	}
	m.stack = append(m.stack, child)
}

// matchSequenceItem decides whether ev opens a new item of a List/Set whose
// declared element type is itemDesc, and which descriptor to push for it:
// the wire convention is a literal <item> tag, but a union element may also
// arrive as one of its alternative's own tag names, and a Class element may
// arrive under its own class name (spec's wire section).
func matchSequenceItem(itemDesc *descriptor.Descriptor, ev scanner.Event) (*descriptor.Descriptor, bool) {
	if ev.Name == "item" {
		return itemDesc, true
	}
	if itemDesc.Kind == descriptor.KindUnion {
		if alt, ok := itemDesc.UnionAlternative(ev.Name); ok {
			return alt, true
		}
	}
	if itemDesc.Kind == descriptor.KindClass && itemDesc.Name == ev.Name {
		return itemDesc, true
	}
	return nil, false
}

func (m *Machine) openInSequence(top *frame, ev scanner.Event) {
	pushDesc, ok := matchSequenceItem(top.itemDesc, ev)
	if !ok {
		m.record(gerrors.WrongElementType, ev.Name, nil)
		m.pushSkip(ev.Name)
		return
	}
	child := pushChildFrame(pushDesc, ev)
	m.stack = append(m.stack, child)
}

func (m *Machine) openInTuple(top *frame, ev scanner.Event) {
	posDesc, ok := top.desc.TuplePositional(top.index)
	if !ok {
		m.record(gerrors.WrongElementType, ev.Name, nil)
		m.pushSkip(ev.Name)
		return
	}
	pushDesc, ok := matchSequenceItem(posDesc, ev)
	if !ok {
		pushDesc = posDesc
	}
	top.index++
	child := pushChildFrame(pushDesc, ev)
	m.stack = append(m.stack, child)
}

func (m *Machine) openInDict(top *frame, ev scanner.Event) {
	if ev.Name != "item" {
		m.record(gerrors.WrongElementType, ev.Name, nil)
		m.pushSkip(ev.Name)
		return
	}
	key, ok := ev.Attr("key")
	if !ok {
		m.record(gerrors.MissingDictKey, ev.Name, nil)
		m.pushSkip(ev.Name)
		return
	}
	top.currentKey = key
	top.haveKey = true
	child := pushChildFrame(top.valueDesc, ev)
	m.stack = append(m.stack, child)
}

func (m *Machine) handleText(ev scanner.Event) {
	top := m.top()
	if top.kind != frameField {
		return
	}
	if !m.chargeBudget(len(ev.Text)) {
		m.fail(gerrors.BufferedTextExceeded, "buffered primitive text exceeded limit")
		return
	}
	top.text = append(top.text, ev.Text...)
}

func (m *Machine) handleClose(ev scanner.Event) {
	idx := -1
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i].openName == ev.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.record(gerrors.UnbalancedClose, ev.Name, nil)
		return
	}
	for len(m.stack)-1 > idx {
		m.popTop()
	}
	if idx == 0 {
		m.finalizeRoot()
		return
	}
	m.popTop()
}

// popTop finalizes the current top frame and attaches its value to the
// frame now beneath it, then removes it from the stack.
func (m *Machine) popTop() {
	f := m.top()
	val, skip := m.finalize(f)
	m.stack = m.stack[:len(m.stack)-1]
	if !skip {
		m.attach(m.top(), f, val)
	}
}

// finalizeRoot closes the root frame in place (it is never removed from
// the stack so Partial/Validate can keep reading it) and marks completion.
func (m *Machine) finalizeRoot() {
	f := m.stack[0]
	if f.kind == frameField {
		val, err := parsePrimitive(f.desc, f.text, true)
		if err != nil {
			m.record(gerrors.PrimitiveParseFailure, "", err)
		}
		f.items = []any{val} // stash the scalar root value for Partial/Validate
	}
	m.releaseBudget(len(f.text))
	m.rootClosed = true
}

// finalize produces the value a frame contributes to its parent, and
// whether it should be discarded instead of attached (a frameSkip frame
// carries no meaningful value).
func (m *Machine) finalize(f *frame) (val any, skip bool) {
	switch f.kind {
	case frameField:
		v, err := parsePrimitive(f.desc, f.text, f.atObjectScope)
		if err != nil {
			m.record(gerrors.PrimitiveParseFailure, f.openName, err)
		}
		m.releaseBudget(len(f.text))
		return v, false
	case frameList, frameSet, frameTuple:
		out := make([]any, len(f.items))
		copy(out, f.items)
		return out, false
	case frameDict:
		d := make(map[string]any, len(f.entryKeys))
		for i, k := range f.entryKeys {
			d[k] = f.entryVals[i]
		}
		return d, false
	case frameObject:
		return m.materialize(f), false
	case frameUnion:
		if len(f.items) > 0 {
			return f.items[0], false
		}
		return nil, false
	case frameSkip:
		return nil, true
	default:
		return nil, true
	}
}

func (m *Machine) materialize(f *frame) any {
	fields := make(map[string]any, len(f.fields))
	for k, v := range f.fields {
		fields[k] = v
	}
	if m.mat != nil {
		return m.mat(f.desc, fields)
	}
	return fields
}

// attach commits a finalized child value into its parent frame.
func (m *Machine) attach(parent *frame, child *frame, val any) {
	switch parent.kind {
	case frameUnion:
		parent.items = []any{val}
	case frameList, frameTuple:
		parent.items = append(parent.items, val)
	case frameSet:
		for _, existing := range parent.items {
			if reflect.DeepEqual(existing, val) {
				return
			}
		}
		parent.items = append(parent.items, val)
	case frameDict:
		if parent.haveKey {
			parent.entryKeys = append(parent.entryKeys, parent.currentKey)
			parent.entryVals = append(parent.entryVals, val)
		}
		parent.haveKey = false
		parent.currentKey = ""
	case frameObject:
		name := child.targetField
		if name == "" {
			name = child.openName
		}
		parent.fields[name] = val
		parent.assigned[name] = true
	default:
		// frameField/frameSkip never gain children that attach.
	}
}
