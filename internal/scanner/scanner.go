package scanner

import "bytes"

type mode byte

const (
	modeOutside mode = iota
	modeInside
)

type ignoredSkipState struct {
	name  string
	depth int
}

// RecoverableError is a non-fatal scanning condition (spec §4.2's error
// recovery: malformed tokens, unmatched closes, malformed attributes).
type RecoverableError struct {
	Code string
}

// Scanner turns chunked byte input into Open/Close/Text events, tracking
// wanted and ignored regions and remaining resumable across arbitrary
// chunk boundaries (spec §4.2).
type Scanner struct {
	buf         []byte
	mode        mode
	regionStack []string
	ignoredSkip *ignoredSkipState

	wanted      map[string]bool
	anyTopLevel bool
	ignored     map[string]bool

	out  []Event
	errs []RecoverableError
}

// New builds a Scanner. wanted is the set of tag names that open a
// wanted region: the root type's own name, plus every alternative name
// when the root is a union (spec §4.2's wanted-region rule). An empty
// wanted set means the root descriptor has no name of its own (a bare
// container or primitive root) — the region opens on the first top-level
// tag, of whatever name, per spec §4.1's binding of such a root directly
// to its wire representation. ignored is the configured ignored-tag set
// (spec §6 default plus host additions).
func New(wanted []string, ignored []string) *Scanner {
	s := &Scanner{
		wanted:      toSet(wanted),
		anyTopLevel: len(wanted) == 0,
		ignored:     toSet(ignored),
	}
	return s
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Consume feeds chunk to the scanner and returns every event producible
// from the buffer so far, retaining any trailing incomplete token prefix
// for the next call (spec §4.2's resumability requirement: it never
// blocks).
func (s *Scanner) Consume(chunk []byte) []Event {
	if len(chunk) > 0 {
		s.buf = append(s.buf, chunk...)
	}
	s.out = s.out[:0]
	for s.step() {
	}
	return s.out
}

// Errors drains and returns recoverable scanning errors observed since
// the last call.
func (s *Scanner) Errors() []RecoverableError {
	e := s.errs
	s.errs = nil
	return e
}

func (s *Scanner) emitOpen(pt parsedTag) {
	s.out = append(s.out, Event{Kind: Open, Name: pt.name, Attrs: pt.attrs})
}

func (s *Scanner) emitClose(name string) {
	s.out = append(s.out, Event{Kind: Close, Name: name})
}

func (s *Scanner) emitText(text []byte) {
	if len(text) == 0 {
		return
	}
	cp := make([]byte, len(text))
	copy(cp, text)
	s.out = append(s.out, Event{Kind: Text, Text: cp})
}

// step consumes and interprets as much of s.buf as it can without
// blocking. It returns false when no further progress is possible until
// more bytes arrive.
func (s *Scanner) step() bool {
	if s.ignoredSkip != nil {
		return s.stepIgnoredSkip()
	}
	if len(s.buf) == 0 {
		return false
	}

	idx := bytes.IndexByte(s.buf, '<')
	if idx < 0 {
		if s.mode == modeInside {
			s.emitText(s.buf)
		}
		s.buf = s.buf[:0]
		return false
	}
	if idx > 0 {
		if s.mode == modeInside {
			s.emitText(s.buf[:idx])
		}
		s.buf = s.buf[idx:]
	}

	end, ok, needMore := findTagEnd(s.buf)
	if needMore {
		return false
	}
	if !ok {
		s.errs = append(s.errs, RecoverableError{Code: "stray-lt"})
		if s.mode == modeInside {
			s.emitText(s.buf[:1])
		}
		s.buf = s.buf[1:]
		return true
	}

	pt := parseTag(s.buf, end)
	tagLen := end + 1
	if !pt.valid {
		s.errs = append(s.errs, RecoverableError{Code: "stray-lt"})
		if s.mode == modeInside {
			s.emitText(s.buf[:1])
		}
		s.buf = s.buf[1:]
		return true
	}
	for range pt.malformed {
		s.errs = append(s.errs, RecoverableError{Code: "malformed-attribute"})
	}

	if s.mode == modeOutside {
		s.handleOutside(pt, tagLen)
	} else {
		s.handleInside(pt, tagLen)
	}
	return true
}

func (s *Scanner) handleOutside(pt parsedTag, tagLen int) {
	if !pt.isClose && s.ignored[pt.name] {
		s.buf = s.buf[tagLen:]
		if !pt.selfClose {
			s.ignoredSkip = &ignoredSkipState{name: pt.name, depth: 1}
		}
		return
	}
	if pt.isClose {
		s.errs = append(s.errs, RecoverableError{Code: "unmatched-close"})
		s.buf = s.buf[tagLen:]
		return
	}
	if s.wanted[pt.name] || s.anyTopLevel {
		s.buf = s.buf[tagLen:]
		s.mode = modeInside
		s.regionStack = append(s.regionStack, pt.name)
		s.emitOpen(pt)
		if pt.selfClose {
			s.popRegion(pt.name)
		}
		return
	}
	// Foreign tag outside any wanted region: not wanted, not ignored.
	// It and its attributes carry no meaning here; skip just the tag.
	s.buf = s.buf[tagLen:]
}

func (s *Scanner) handleInside(pt parsedTag, tagLen int) {
	if !pt.isClose && s.ignored[pt.name] {
		s.buf = s.buf[tagLen:]
		if !pt.selfClose {
			s.ignoredSkip = &ignoredSkipState{name: pt.name, depth: 1}
		}
		return
	}
	if pt.isClose {
		s.buf = s.buf[tagLen:]
		s.closeRegion(pt.name)
		return
	}
	s.buf = s.buf[tagLen:]
	s.regionStack = append(s.regionStack, pt.name)
	s.emitOpen(pt)
	if pt.selfClose {
		s.popRegion(pt.name)
	}
}

// popRegion pops exactly the top of regionStack (used for self-closing
// tags, which open and close in the same event) and emits its Close.
func (s *Scanner) popRegion(name string) {
	s.regionStack = s.regionStack[:len(s.regionStack)-1]
	s.emitClose(name)
	if len(s.regionStack) == 0 {
		s.mode = modeOutside
	}
}

// closeRegion handles a received `</name>` close event. A close matching
// the stack top pops normally; a close matching a shallower entry
// synthesizes Close events for the still-open descendants in between
// (spec §4.2: "the expected close is synthesized when the enclosing
// scope ends"); a close matching nothing currently open is discarded
// silently.
func (s *Scanner) closeRegion(name string) {
	idx := -1
	for i := len(s.regionStack) - 1; i >= 0; i-- {
		if s.regionStack[i] == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.errs = append(s.errs, RecoverableError{Code: "unmatched-close"})
		return
	}
	for i := len(s.regionStack) - 1; i > idx; i-- {
		s.emitClose(s.regionStack[i])
	}
	s.emitClose(name)
	s.regionStack = s.regionStack[:idx]
	if len(s.regionStack) == 0 {
		s.mode = modeOutside
	}
}

// stepIgnoredSkip advances through content being elided as an ignored
// tag's region (spec §4.2's ignored-tag rule). Outside a wanted region
// the content is discarded outright; inside one it is passed through as
// text. Either way, same-named nested occurrences are depth-tracked, and
// (when inside a wanted region) the enclosing region's own close
// implicitly ends an unbalanced ignored tag.
func (s *Scanner) stepIgnoredSkip() bool {
	outer := ""
	if s.mode == modeInside && len(s.regionStack) > 0 {
		outer = s.regionStack[0]
	}
	b, outerHit := scanSkipBoundary(s.buf, s.ignoredSkip.name, outer)
	if b.needMore {
		return false
	}
	if !b.found {
		if s.mode == modeInside {
			s.emitText(s.buf[:b.passthroughLen])
		}
		s.buf = s.buf[b.passthroughLen:]
		return false
	}
	if s.mode == modeInside && b.passthroughLen > 0 {
		s.emitText(s.buf[:b.passthroughLen])
	}
	s.buf = s.buf[b.passthroughLen:]

	if outerHit {
		s.ignoredSkip = nil
		return true // reprocess the now-exposed outer close normally
	}

	if b.isClose {
		s.ignoredSkip.depth--
	} else if !b.isSelfClose {
		s.ignoredSkip.depth++
	}
	s.buf = s.buf[b.markerLen:]
	if s.ignoredSkip.depth <= 0 {
		s.ignoredSkip = nil
	}
	return true
}
