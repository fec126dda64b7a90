package scanner

// ignoredBoundary is the result of searching a buffer for the next open
// or close marker of a specific ignored tag name, treating everything
// else — including other tags' markup — as opaque passthrough bytes, per
// spec §4.2: ignored-tag content (when inside a wanted region) "is passed
// through as text" verbatim, not re-parsed.
type ignoredBoundary struct {
	passthroughLen int  // bytes before the marker, to pass through/discard
	markerLen      int  // total bytes of the marker itself ("<name...>" or "</name>")
	isClose        bool // open vs close marker
	isSelfClose    bool
	found          bool
	needMore       bool // a candidate marker started but isn't complete yet
}

// scanIgnoredBoundary finds the next occurrence, in buf, of an open
// (`<name...>` or `<name.../>`) or close (`</name>`) marker for the given
// ignored tag name.
func scanIgnoredBoundary(buf []byte, name string) ignoredBoundary {
	b, _ := scanSkipBoundary(buf, name, "")
	return b
}

// scanSkipBoundary is scanIgnoredBoundary generalized with a second watch
// name whose CLOSE marker also terminates the scan (but is not
// consumed): this implements spec §4.2's "an ignored tag whose opening is
// unbalanced is closed implicitly at the enclosing wanted-region
// boundary" — outerName is the outermost currently-open wanted tag name,
// and its close ends the ignored-tag skip even if the ignored tag itself
// was never properly closed. outerHit reports which watch matched.
func scanSkipBoundary(buf []byte, name, outerName string) (b ignoredBoundary, outerHit bool) {
	for i := 0; i < len(buf); i++ {
		if buf[i] != '<' {
			continue
		}
		rest := buf[i:]
		// A marker for either watched name that the buffer ends in the
		// middle of ("</thi") cannot be classified yet: wait for more bytes.
		for _, watch := range []string{name, outerName} {
			j := 1
			if j < len(rest) && rest[j] == '/' {
				j++
			}
			if watch != "" && len(rest)-j < len(watch) && string(rest[j:]) == watch[:len(rest)-j] {
				return ignoredBoundary{passthroughLen: i, found: false, needMore: true}, false
			}
		}
		if isClose, _, matches := matchMarkerName(rest, name); matches {
			end, ok, needMore := findTagEnd(rest)
			if needMore {
				return ignoredBoundary{passthroughLen: i, found: false, needMore: true}, false
			}
			if !ok {
				continue
			}
			pt := parseTag(rest, end)
			if pt.name != name || pt.isClose != isClose {
				continue
			}
			return ignoredBoundary{
				passthroughLen: i,
				markerLen:      end + 1,
				isClose:        isClose,
				isSelfClose:    pt.selfClose,
				found:          true,
			}, false
		}
		if outerName != "" {
			if isClose, _, matches := matchMarkerName(rest, outerName); matches && isClose {
				end, ok, needMore := findTagEnd(rest)
				if needMore {
					return ignoredBoundary{passthroughLen: i, found: false, needMore: true}, true
				}
				if !ok {
					continue
				}
				pt := parseTag(rest, end)
				if pt.name != outerName || !pt.isClose {
					continue
				}
				return ignoredBoundary{passthroughLen: i, found: true}, true
			}
		}
	}
	return ignoredBoundary{passthroughLen: len(buf), found: false}, false
}

// matchMarkerName reports whether rest (starting with '<') begins the
// opening or closing marker for name, without requiring the full tag to
// be present yet.
func matchMarkerName(rest []byte, name string) (isClose bool, nameLen int, matches bool) {
	i := 1
	if i < len(rest) && rest[i] == '/' {
		isClose = true
		i++
	}
	if len(rest)-i < len(name) {
		return isClose, 0, false
	}
	if string(rest[i:i+len(name)]) != name {
		return isClose, 0, false
	}
	end := i + len(name)
	if end < len(rest) {
		c := rest[end]
		if isNameChar(c) {
			return isClose, 0, false // longer identifier, e.g. "think2"
		}
	}
	return isClose, len(name), true
}
